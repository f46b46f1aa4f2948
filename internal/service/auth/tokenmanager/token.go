package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
)

const (
	defaultAccessTokenTTL  = 60 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// User data every token carries
type Payload struct {
	UserID    uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SessionID uuid.UUID `json:"session_id"`
}

func PayloadOf(u models.User) Payload {
	return Payload{UserID: u.ID, Name: u.Name, SessionID: u.SessionID}
}

// Claims shared by all token kinds
// Registered 'aud' claim holds the token kind ('user-access', 'blog-refresh', ...)
type Claims struct {
	jwt.RegisteredClaims
	Payload
}

func (c *Claims) validate(kind models.TokenKind) error {
	switch {
	case c.ExpiresAt == nil:
		return errors.New("exp claim is missing")
	case c.UserID == uuid.Nil:
		return errors.New("id claim is missing")
	case c.SessionID == uuid.Nil:
		return errors.New("session_id claim is missing")
	}

	for _, aud := range c.Audience {
		if aud == kind.String() {
			return nil
		}
	}
	return fmt.Errorf("token is not issued for %s", kind)
}

// Token manager with sensible defaults
type Config struct {
	// Kind of tokens the manager issues and accepts
	Kind models.TokenKind

	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetime
	// If not set than default for the token type is used
	TTL time.Duration

	// Clock; UTC time.Now if not set
	Now func() time.Time
}

// Signs and decodes tokens of one kind
type TokenManager struct {
	kind models.TokenKind

	// Secret key to sign tokens
	key []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	ttl time.Duration
	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%s: secret key must not be empty", cfg.Kind)
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported signing method %q", cfg.Kind, cfg.Alg)
	}

	if cfg.TTL == 0 {
		switch cfg.Kind.Type {
		case models.TokenRefresh:
			cfg.TTL = defaultRefreshTokenTTL
		default:
			cfg.TTL = defaultAccessTokenTTL
		}
	}

	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &TokenManager{
		kind: cfg.Kind,
		key:  []byte(cfg.SecretKey),
		alg:  alg,
		ttl:  cfg.TTL,
		now:  cfg.Now,
	}, nil
}

func (m *TokenManager) Kind() models.TokenKind { return m.kind }

// Issue signed token with the payload
// Token expires after ttl; manager default is used if ttl is zero
func (m *TokenManager) Issue(p Payload, ttl time.Duration) (models.IssuedToken, error) {
	if ttl == 0 {
		ttl = m.ttl
	}
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   p.UserID.String(),
				Audience:  jwt.ClaimStrings{m.kind.String()},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Payload: p,
		},
	)
	value, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: error while signing %s token. Err: %w", apperrors.ErrTokenCreation, m.kind, err)
	}

	return models.IssuedToken{Kind: m.kind, Value: value, ExpiresAt: expiresAt}, nil
}

// Decode token and verify its signature and claims
//
// The token is expired when 'exp' is not after now. In that case claims are returned
// together with apperrors.ErrTokenExpired: the token is otherwise valid.
// Any other problem (signature, algorithm, structure, audience) is apperrors.ErrTokenInvalid
func (m *TokenManager) Decode(token string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithoutClaimsValidation(), // expiration checked below with own clock
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s: %w", apperrors.ErrTokenInvalid, m.kind, err)
	}

	if err := claims.validate(m.kind); err != nil {
		return Claims{}, fmt.Errorf("%w: %s: %w", apperrors.ErrTokenInvalid, m.kind, err)
	}

	if !m.now().Before(claims.ExpiresAt.Time) {
		return claims, fmt.Errorf("%s: %w", m.kind, apperrors.ErrTokenExpired)
	}

	return claims, nil
}

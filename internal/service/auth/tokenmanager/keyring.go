package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/quill/internal/models"
)

type KeyringConfig struct {
	// Secret key for every token kind. All of them are required
	Secrets map[models.TokenKind]string

	// Shared by all kinds. Defaults are used if not set
	Alg        string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Token managers for every token kind
type Keyring struct {
	managers map[models.TokenKind]*TokenManager
}

// Create token managers for all token kinds
// Fails if any secret is missing, so misconfiguration is found at startup
func NewKeyring(cfg KeyringConfig) (*Keyring, error) {
	k := &Keyring{managers: make(map[models.TokenKind]*TokenManager, len(cfg.Secrets))}

	var errs []error
	for _, kind := range models.TokenKinds() {
		ttl := cfg.AccessTTL
		if kind.Type == models.TokenRefresh {
			ttl = cfg.RefreshTTL
		}

		m, err := New(Config{
			Kind:      kind,
			SecretKey: cfg.Secrets[kind],
			Alg:       cfg.Alg,
			TTL:       ttl,
			Now:       cfg.Now,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		k.managers[kind] = m
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("keyring misconfigured: %w", err)
	}

	return k, nil
}

func (k *Keyring) Manager(kind models.TokenKind) *TokenManager {
	return k.managers[kind]
}

func (k *Keyring) Access(aud models.Audience) *TokenManager {
	return k.managers[models.AccessKind(aud)]
}

func (k *Keyring) Refresh(aud models.Audience) *TokenManager {
	return k.managers[models.RefreshKind(aud)]
}

// Issue access and refresh tokens for every audience with default lifetimes
func (k *Keyring) IssueAll(p Payload) (models.Tokens, error) {
	tokens := make(models.Tokens, len(models.Audiences))

	for _, aud := range models.Audiences {
		access, err := k.Access(aud).Issue(p, 0)
		if err != nil {
			return nil, err
		}
		refresh, err := k.Refresh(aud).Issue(p, 0)
		if err != nil {
			return nil, err
		}
		tokens[aud] = models.TokenPair{Access: access, Refresh: refresh}
	}

	return tokens, nil
}

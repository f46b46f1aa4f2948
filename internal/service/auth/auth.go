package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/logger"
	"github.com/nkiryanov/quill/internal/metrics"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
	"github.com/nkiryanov/quill/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/quill/internal/service/session"
)

type Config struct {
	// Hasher to verify passwords on login
	// Must be the same the accounts are created with
	Hasher PasswordHasher

	// Carrier for every token kind
	// DefaultCarriers without domain if not set
	Carriers map[models.TokenKind]models.Carrier

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// Account management the service delegates to
type userService interface {
	CreateUser(ctx context.Context, name string, password string, createdBy *uuid.UUID) (models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Auth service
type AuthService struct {
	// Token managers for every audience
	keyring *tokenmanager.Keyring

	// Single active session epoch of users
	sessions *session.Store

	// hasher to compare user passwords
	hasher PasswordHasher

	storage  repository.Storage
	users    userService
	carriers map[models.TokenKind]models.Carrier

	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewService(cfg Config, keyring *tokenmanager.Keyring, storage repository.Storage, users userService) (*AuthService, error) {
	if keyring == nil || storage == nil || users == nil {
		return nil, errors.New("keyring, storage and user service must not be nil")
	}

	// Set default bcrypt hasher if not user provided by user
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	carriers := cfg.Carriers
	if carriers == nil {
		carriers = DefaultCarriers("")
	}
	for _, kind := range models.TokenKinds() {
		if carriers[kind].Name == "" {
			return nil, fmt.Errorf("carrier for %s is not set", kind)
		}
	}

	l := cfg.Logger
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AuthService{
		keyring:  keyring,
		sessions: session.NewStore(storage),
		hasher:   hasher,
		storage:  storage,
		users:    users,
		carriers: carriers,
		logger:   l.With("service", "auth"),
		metrics:  cfg.Metrics,
	}, nil
}

// Login user: verify password, start new session epoch and issue token pair for every audience
// Tokens are returned only if the new epoch is committed
// Caller is responsible to put tokens into carriers (see SetCarriers)
func (s *AuthService) Login(ctx context.Context, name string, password string) (models.Tokens, error) {
	tokens, err := s.login(ctx, name, password)

	switch {
	case err == nil:
		s.metrics.AuthEvent(metrics.EventLogin, "ok")
	case apperrors.IsAuthFailure(err):
		s.metrics.AuthEvent(metrics.EventLogin, "rejected")
	default:
		s.metrics.AuthEvent(metrics.EventLogin, "error")
		s.logger.Error("login failed", "name", name, "error", err)
	}

	return tokens, err
}

func (s *AuthService) login(ctx context.Context, name string, password string) (models.Tokens, error) {
	user, err := s.storage.User().GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrCredentialInvalid, err)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(user.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrCredentialInvalid
	}

	var tokens models.Tokens
	_, err = s.sessions.Renew(ctx, user.ID, func(u models.User) (issueErr error) {
		tokens, issueErr = s.keyring.IssueAll(tokenmanager.PayloadOf(u))
		return issueErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user logged in", "user_id", user.ID)
	return tokens, nil
}

// Logout user: start new session epoch, so all issued refresh tokens become stale, and clear carriers
// Carriers are cleared even if epoch could not be persisted; both failures are reported
func (s *AuthService) Logout(ctx context.Context, user models.User, sink CarrierSink) error {
	_, renewErr := s.sessions.Renew(ctx, user.ID, nil)
	clearErr := s.ClearCarriers(sink)

	err := errors.Join(renewErr, clearErr)
	switch {
	case err == nil:
		s.metrics.AuthEvent(metrics.EventLogout, "ok")
	default:
		s.metrics.AuthEvent(metrics.EventLogout, "error")
		s.logger.Error("logout failed", "user_id", user.ID, "error", err)
	}

	return err
}

// Create account on behalf of authenticated creator
func (s *AuthService) CreateUser(ctx context.Context, creator models.User, name string, password string) (models.User, error) {
	if creator.ID == uuid.Nil {
		return models.User{}, apperrors.ErrNotAuthenticated
	}

	return s.users.CreateUser(ctx, name, password, &creator.ID)
}

// Delete account of authenticated user and clear its carriers
func (s *AuthService) DeleteUser(ctx context.Context, user models.User, sink CarrierSink) error {
	if user.ID == uuid.Nil {
		return apperrors.ErrNotAuthenticated
	}

	err := s.users.DeleteUser(ctx, user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	return errors.Join(err, s.ClearCarriers(sink))
}

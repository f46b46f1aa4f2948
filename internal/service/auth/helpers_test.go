package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
	"github.com/nkiryanov/quill/internal/repository/memory"
	"github.com/nkiryanov/quill/internal/service/auth/tokenmanager"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 24 * time.Hour
)

var testHasher = BcryptHasher{Cost: bcrypt.MinCost}

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Sink that remembers what is set and cleared
type recordingSink struct {
	values  map[string]string
	expires map[string]time.Time
	cleared []string

	setErr   error
	clearErr error
}

func newSink() *recordingSink {
	return &recordingSink{values: make(map[string]string), expires: make(map[string]time.Time)}
}

func (s *recordingSink) Set(c models.Carrier, value string, expiresAt time.Time) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[c.Name] = value
	s.expires[c.Name] = expiresAt
	return nil
}

func (s *recordingSink) Clear(c models.Carrier) error {
	s.cleared = append(s.cleared, c.Name)
	delete(s.values, c.Name)
	return s.clearErr
}

// Minimal account service over storage
type testUsers struct {
	storage repository.Storage
}

func (u testUsers) CreateUser(ctx context.Context, name string, password string, createdBy *uuid.UUID) (models.User, error) {
	hash, err := testHasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	return u.storage.User().CreateUser(ctx, repository.CreateUserParams{Name: name, HashedPassword: hash, CreatedBy: createdBy})
}

func (u testUsers) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return u.storage.User().DeleteUser(ctx, userID)
}

// Storage which transactions always fail
type brokenTxStorage struct {
	repository.Storage
}

func (s brokenTxStorage) InTx(context.Context, func(repository.Storage) error) error {
	return fmt.Errorf("%w: connection refused", apperrors.ErrPersistence)
}

type testEnv struct {
	svc     *AuthService
	storage repository.Storage
	keyring *tokenmanager.Keyring
	clock   *testClock
	alice   models.User
}

func testSecrets() map[models.TokenKind]string {
	return map[models.TokenKind]string{
		models.AccessKind(models.AudienceUser):  "user-access-secret",
		models.RefreshKind(models.AudienceUser): "user-refresh-secret",
		models.AccessKind(models.AudienceBlog):  "blog-access-secret",
		models.RefreshKind(models.AudienceBlog): "blog-refresh-secret",
	}
}

// Auth service over memory storage with user 'alice' (password 'correct')
// Use wrap to replace storage the service works with
func newTestEnv(t *testing.T, wrap func(repository.Storage) repository.Storage) *testEnv {
	t.Helper()

	clock := &testClock{now: mustParseTime("2025-01-01 12:00:00Z")}
	keyring, err := tokenmanager.NewKeyring(tokenmanager.KeyringConfig{
		Secrets:    testSecrets(),
		AccessTTL:  testAccessTTL,
		RefreshTTL: testRefreshTTL,
		Now:        clock.Now,
	})
	require.NoError(t, err)

	var storage repository.Storage = memory.NewStorage()
	users := testUsers{storage: storage}
	alice, err := users.CreateUser(t.Context(), "alice", "correct", nil)
	require.NoError(t, err)

	svcStorage := storage
	if wrap != nil {
		svcStorage = wrap(storage)
	}

	svc, err := NewService(Config{Hasher: testHasher, Carriers: DefaultCarriers("127.0.0.1")}, keyring, svcStorage, users)
	require.NoError(t, err)

	return &testEnv{svc: svc, storage: storage, keyring: keyring, clock: clock, alice: alice}
}

func (e *testEnv) epoch(t *testing.T) uuid.UUID {
	t.Helper()
	user, err := e.storage.User().GetUserByID(t.Context(), e.alice.ID)
	require.NoError(t, err)
	return user.SessionID
}

func (e *testEnv) login(t *testing.T) models.Tokens {
	t.Helper()
	tokens, err := e.svc.Login(t.Context(), "alice", "correct")
	require.NoError(t, err)
	return tokens
}

func (e *testEnv) resolve(t *testing.T, aud models.Audience, tokens models.Tokens, sink *recordingSink) (Resolution, error) {
	t.Helper()
	return e.svc.Resolve(t.Context(), aud, tokens[aud].Access.Value, tokens[aud].Refresh.Value, sink)
}

func requireCleared(t *testing.T, sink *recordingSink) {
	t.Helper()
	require.ElementsMatch(t,
		[]string{"user_access_token", "user_refresh_token", "blog_access_token", "blog_refresh_token"},
		sink.cleared,
		"all carriers must be cleared",
	)
}

var errSink = errors.New("response already written")

package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
	"github.com/nkiryanov/quill/internal/repository/memory"
	"github.com/nkiryanov/quill/internal/repository/postgres"
	"github.com/nkiryanov/quill/internal/service/auth"
	"github.com/nkiryanov/quill/internal/testutil"
)

var testHasher = auth.BcryptHasher{Cost: bcrypt.MinCost}

func testUserService(t *testing.T, s *UserService, storage repository.Storage) {
	t.Run("create ok", func(t *testing.T) {
		user, err := s.CreateUser(t.Context(), "test-user", "password123", nil)

		require.NoError(t, err, "creating new user should be ok")
		require.NotEmpty(t, user.ID, "user ID should not be empty")
		require.Equal(t, "test-user", user.Name, "name should match")
		require.NotEqual(t, "password123", user.HashedPassword, "password should be hashed")
		require.NotZero(t, user.CreatedAt, "created at should be set")
		require.Nil(t, user.CreatedBy)

		ok, err := testHasher.Verify(user.HashedPassword, "password123")
		require.NoError(t, err)
		require.True(t, ok, "stored hash should match password")
	})

	t.Run("create by other user", func(t *testing.T) {
		admin, err := s.CreateUser(t.Context(), "admin", "password123", nil)
		require.NoError(t, err)

		user, err := s.CreateUser(t.Context(), "bob", "password123", &admin.ID)

		require.NoError(t, err)
		require.Equal(t, &admin.ID, user.CreatedBy)
	})

	t.Run("empty password fail", func(t *testing.T) {
		_, err := s.CreateUser(t.Context(), "empty-password", "", nil)

		require.Error(t, err, "creating user with empty password should fail")
	})

	t.Run("duplicate name fail", func(t *testing.T) {
		_, err := s.CreateUser(t.Context(), "duplicate", "password123", nil)
		require.NoError(t, err)

		_, err = s.CreateUser(t.Context(), "duplicate", "password123", nil)

		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})

	t.Run("get and delete", func(t *testing.T) {
		created, err := s.CreateUser(t.Context(), "to-delete", "password123", nil)
		require.NoError(t, err)
		_, err = storage.Post().CreatePost(t.Context(), models.Post{UserID: created.ID, Title: "t", Body: "b"})
		require.NoError(t, err)

		got, err := s.GetUser(t.Context(), created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)

		err = s.DeleteUser(t.Context(), created.ID)
		require.NoError(t, err)

		_, err = s.GetUser(t.Context(), created.ID)
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		posts, err := storage.Post().ListPosts(t.Context(), created.ID)
		require.NoError(t, err)
		require.Empty(t, posts)
	})

	t.Run("delete missing user", func(t *testing.T) {
		err := s.DeleteUser(t.Context(), uuid.New())

		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUser_Memory(t *testing.T) {
	storage := memory.NewStorage()
	testUserService(t, NewService(testHasher, storage), storage)
}

func TestUser_Postgres(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)
		testUserService(t, NewService(testHasher, storage), storage)
	})
}

func TestUser_DefaultHasher(t *testing.T) {
	s := NewService(nil, memory.NewStorage())

	require.Equal(t, auth.DefaultHasher, s.hasher)
}

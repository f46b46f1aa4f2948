package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
	"github.com/nkiryanov/quill/internal/repository/memory"
)

func newUser(t *testing.T, s repository.Storage) models.User {
	user, err := s.User().CreateUser(t.Context(), repository.CreateUserParams{Name: "alice", HashedPassword: "hash"})
	require.NoError(t, err)
	return user
}

func currentEpoch(t *testing.T, s repository.Storage, userID uuid.UUID) uuid.UUID {
	user, err := s.User().GetUserByID(t.Context(), userID)
	require.NoError(t, err)
	return user.SessionID
}

// Storage that fails to start any transaction
type brokenStorage struct {
	repository.Storage
}

func (s brokenStorage) InTx(context.Context, func(repository.Storage) error) error {
	return apperrors.ErrPersistence
}

func TestStore_Renew(t *testing.T) {
	t.Run("new epoch persisted", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)

		renewed, err := store.Renew(t.Context(), user.ID, nil)

		require.NoError(t, err)
		require.NotEqual(t, user.SessionID, renewed.SessionID)
		require.Equal(t, renewed.SessionID, currentEpoch(t, storage, user.ID))
	})

	t.Run("fn sees new epoch", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)

		var seen uuid.UUID
		renewed, err := store.Renew(t.Context(), user.ID, func(u models.User) error {
			seen = u.SessionID
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, renewed.SessionID, seen)
	})

	t.Run("fn failure keeps old epoch", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)
		boom := errors.New("boom")

		_, err := store.Renew(t.Context(), user.ID, func(models.User) error { return boom })

		require.ErrorIs(t, err, boom)
		require.Equal(t, user.SessionID, currentEpoch(t, storage, user.ID))
	})

	t.Run("user not found", func(t *testing.T) {
		store := NewStore(memory.NewStorage())

		_, err := store.Renew(t.Context(), uuid.New(), nil)

		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("persistence failure reported", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(brokenStorage{storage})

		_, err := store.Renew(t.Context(), user.ID, nil)

		require.ErrorIs(t, err, apperrors.ErrPersistence)
	})
}

func TestStore_Rotate(t *testing.T) {
	t.Run("match rotates", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)

		rotated, err := store.Rotate(t.Context(), user.ID, user.SessionID, nil)

		require.NoError(t, err)
		require.NotEqual(t, user.SessionID, rotated.SessionID)
		require.Equal(t, rotated.SessionID, currentEpoch(t, storage, user.ID))
	})

	t.Run("same epoch twice is mismatch", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)

		rotated, err := store.Rotate(t.Context(), user.ID, user.SessionID, nil)
		require.NoError(t, err)

		_, err = store.Rotate(t.Context(), user.ID, user.SessionID, nil)

		require.ErrorIs(t, err, apperrors.ErrSessionMismatch)
		require.NotEqual(t, rotated.SessionID, currentEpoch(t, storage, user.ID), "mismatch has to bump epoch again")
	})

	t.Run("mismatch does not call fn", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)

		called := false
		_, err := store.Rotate(t.Context(), user.ID, uuid.New(), func(models.User) error {
			called = true
			return nil
		})

		require.ErrorIs(t, err, apperrors.ErrSessionMismatch)
		require.False(t, called)
	})

	t.Run("fn failure keeps epoch", func(t *testing.T) {
		storage := memory.NewStorage()
		user := newUser(t, storage)
		store := NewStore(storage)
		boom := errors.New("boom")

		_, err := store.Rotate(t.Context(), user.ID, user.SessionID, func(models.User) error { return boom })

		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, apperrors.ErrSessionMismatch)
		require.Equal(t, user.SessionID, currentEpoch(t, storage, user.ID))
	})

	t.Run("user not found", func(t *testing.T) {
		store := NewStore(memory.NewStorage())

		_, err := store.Rotate(t.Context(), uuid.New(), uuid.New(), nil)

		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		require.NotErrorIs(t, err, apperrors.ErrSessionMismatch)
	})
}

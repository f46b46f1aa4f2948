// Package session keeps the single active session epoch of a user.
//
// Epoch is the user's session_id: refresh tokens embed it and are valid only
// while it stays the same. Every change happens in a storage transaction and
// the passed callback runs inside that transaction, so tokens minted for the
// new epoch are returned only when the epoch is committed.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
)

type Store struct {
	storage repository.Storage
	newID   func() uuid.UUID
}

func NewStore(storage repository.Storage) *Store {
	return &Store{storage: storage, newID: uuid.New}
}

// Renew replaces user epoch unconditionally (login and logout)
// fn may be nil; if fn fails the epoch is not changed
func (s *Store) Renew(ctx context.Context, userID uuid.UUID, fn func(models.User) error) (models.User, error) {
	var user models.User

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		user, err = tx.User().SetSessionID(ctx, userID, s.newID())
		if err != nil {
			return err
		}
		if fn != nil {
			return fn(user)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Rotate replaces user epoch only if it still equals expected (refresh)
// If the epoch has moved on the presented epoch is stale: the epoch is bumped anyway
// and apperrors.ErrSessionMismatch is returned (joined with bump failure if any)
func (s *Store) Rotate(ctx context.Context, userID uuid.UUID, expected uuid.UUID, fn func(models.User) error) (models.User, error) {
	var user models.User

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		user, err = tx.User().SwapSessionID(ctx, userID, expected, s.newID())
		if err != nil {
			return err
		}
		if fn != nil {
			return fn(user)
		}
		return nil
	})

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrSessionMismatch):
		_, renewErr := s.Renew(ctx, userID, nil)
		return models.User{}, errors.Join(err, renewErr)
	default:
		return models.User{}, err
	}
}

// Package memory keeps users and posts in process memory.
// It is used when the service runs without database and in service tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
)

type state struct {
	users map[uuid.UUID]models.User
	posts map[uuid.UUID]models.Post
}

func (s *state) clone() *state {
	c := &state{
		users: make(map[uuid.UUID]models.User, len(s.users)),
		posts: make(map[uuid.UUID]models.Post, len(s.posts)),
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	for id, p := range s.posts {
		c.posts[id] = p
	}
	return c
}

// Storage serializes all transactions with single mutex
// Transaction works on a copy of the state and replaces the state on commit
type Storage struct {
	mu     *sync.Mutex
	st     *state
	locked bool // true inside InTx, mutex is held by the transaction

	// Creation time of users and posts
	now func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		mu: &sync.Mutex{},
		st: &state{
			users: make(map[uuid.UUID]models.User),
			posts: make(map[uuid.UUID]models.Post),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Use now as the storage clock; times it returns are stored in UTC
func (s *Storage) WithClock(now func() time.Time) *Storage {
	s.now = func() time.Time { return now().UTC() }
	return s
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{s: s}
}

func (s *Storage) Post() repository.PostRepo {
	return &PostRepo{s: s}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	unlock := s.lock()
	defer unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: tx not started: %w", apperrors.ErrPersistence, err)
	}

	tx := &Storage{mu: s.mu, st: s.st.clone(), locked: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}

	*s.st = *tx.st
	return nil
}

func (s *Storage) lock() func() {
	if s.locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

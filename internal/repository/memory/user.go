package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
)

type UserRepo struct {
	s *Storage
}

func (r *UserRepo) CreateUser(_ context.Context, params repository.CreateUserParams) (models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	for _, u := range r.s.st.users {
		if u.Name == params.Name {
			return models.User{}, apperrors.ErrUserAlreadyExists
		}
	}

	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      r.s.now(),
		Name:           params.Name,
		HashedPassword: params.HashedPassword,
		SessionID:      uuid.New(),
		CreatedBy:      params.CreatedBy,
	}
	r.s.st.users[user.ID] = user

	return user, nil
}

func (r *UserRepo) GetUserByID(_ context.Context, userID uuid.UUID) (models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	user, ok := r.s.st.users[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepo) GetUserByName(_ context.Context, name string) (models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	for _, u := range r.s.st.users {
		if u.Name == name {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *UserRepo) SetSessionID(_ context.Context, userID uuid.UUID, sessionID uuid.UUID) (models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	user, ok := r.s.st.users[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}

	user.SessionID = sessionID
	r.s.st.users[userID] = user
	return user, nil
}

func (r *UserRepo) SwapSessionID(_ context.Context, userID uuid.UUID, expected uuid.UUID, next uuid.UUID) (models.User, error) {
	unlock := r.s.lock()
	defer unlock()

	user, ok := r.s.st.users[userID]
	switch {
	case !ok:
		return models.User{}, apperrors.ErrUserNotFound
	case user.SessionID != expected:
		return models.User{}, apperrors.ErrSessionMismatch
	}

	user.SessionID = next
	r.s.st.users[userID] = user
	return user, nil
}

// Delete user and the user posts
// Users created by the deleted one keep existing with empty creator
func (r *UserRepo) DeleteUser(_ context.Context, userID uuid.UUID) error {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.st.users[userID]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.s.st.users, userID)

	for id, u := range r.s.st.users {
		if u.CreatedBy != nil && *u.CreatedBy == userID {
			u.CreatedBy = nil
			r.s.st.users[id] = u
		}
	}
	for id, p := range r.s.st.posts {
		if p.UserID == userID {
			delete(r.s.st.posts, id)
		}
	}

	return nil
}

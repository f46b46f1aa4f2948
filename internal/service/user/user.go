package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
	"github.com/nkiryanov/quill/internal/service/auth"
)

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Create user with hashed password
// createdBy is the id of the user who provisioned the account; nil for bootstrap account
func (s *UserService) CreateUser(ctx context.Context, name string, password string, createdBy *uuid.UUID) (models.User, error) {
	var user models.User
	if password == "" {
		return user, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Name:           name,
		HashedPassword: hash,
		CreatedBy:      createdBy,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// Delete user with all the user posts
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := s.storage.User().DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("can't delete user. Err: %w", err)
	}
	return nil
}

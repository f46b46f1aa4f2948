package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/models"
)

// Access to all repositories sharing one connection (or transaction)
type Storage interface {
	User() UserRepo
	Post() PostRepo

	// Run fn in transaction: commit if fn returns nil and rollback otherwise
	// Storage passed to fn must be used for all operations inside the transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}

type CreateUserParams struct {
	Name           string
	HashedPassword string
	CreatedBy      *uuid.UUID
}

// User repository interface
// Errors not listed below are infrastructure errors and must wrap apperrors.ErrPersistence
type UserRepo interface {
	// Create user with fresh session epoch
	// If user with the name exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or name
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByName(ctx context.Context, name string) (models.User, error)

	// Replace user session epoch unconditionally
	// If user not found must return apperrors.ErrUserNotFound
	SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (models.User, error)

	// Replace user session epoch only if the current one equals expected (compare-and-swap)
	// If current epoch differs must return apperrors.ErrSessionMismatch
	// If user not found must return apperrors.ErrUserNotFound
	SwapSessionID(ctx context.Context, userID uuid.UUID, expected uuid.UUID, next uuid.UUID) (models.User, error)

	// Delete user with all the user posts
	// If user not found must return apperrors.ErrUserNotFound
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type PostRepo interface {
	// If post author not found must return apperrors.ErrUserNotFound
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)

	// If post not found must return apperrors.ErrPostNotFound
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)

	// List user posts, newest first
	ListPosts(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
}

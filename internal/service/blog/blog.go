package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"

	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
)

type BlogService struct {
	// Repository to access long term data
	postRepo repository.PostRepo
}

func NewService(postRepo repository.PostRepo) *BlogService {
	return &BlogService{
		postRepo: postRepo,
	}
}

func (s *BlogService) CreatePost(ctx context.Context, user *models.User, title string, body string) (models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return models.Post{}, errors.New("post title must not be empty")
	}

	return s.postRepo.CreatePost(ctx, models.Post{
		UserID: user.ID,
		Title:  title,
		Body:   body,
	})
}

// Post of the user
// Posts of other users are apperrors.ErrPermissionDenied, missing ones apperrors.ErrPostNotFound
func (s *BlogService) GetPost(ctx context.Context, user *models.User, postID uuid.UUID) (models.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if post.UserID != user.ID {
		return models.Post{}, fmt.Errorf("%w: post %s belongs to another user", apperrors.ErrPermissionDenied, postID)
	}

	return post, nil
}

// User posts, newest first
func (s *BlogService) ListPosts(ctx context.Context, user *models.User) ([]models.Post, error) {
	return s.postRepo.ListPosts(ctx, user.ID)
}

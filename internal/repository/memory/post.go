package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
)

type PostRepo struct {
	s *Storage
}

func (r *PostRepo) CreatePost(_ context.Context, p models.Post) (models.Post, error) {
	unlock := r.s.lock()
	defer unlock()

	if _, ok := r.s.st.users[p.UserID]; !ok {
		return models.Post{}, apperrors.ErrUserNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
	}

	r.s.st.posts[p.ID] = p
	return p, nil
}

func (r *PostRepo) GetPost(_ context.Context, postID uuid.UUID) (models.Post, error) {
	unlock := r.s.lock()
	defer unlock()

	p, ok := r.s.st.posts[postID]
	if !ok {
		return models.Post{}, apperrors.ErrPostNotFound
	}
	return p, nil
}

func (r *PostRepo) ListPosts(_ context.Context, userID uuid.UUID) ([]models.Post, error) {
	unlock := r.s.lock()
	defer unlock()

	posts := make([]models.Post, 0)
	for _, p := range r.s.st.posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}

	slices.SortFunc(posts, func(a, b models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return posts, nil
}

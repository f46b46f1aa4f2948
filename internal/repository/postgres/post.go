package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
)

type PostRepo struct {
	DB DBTX
}

const postColumns = `id, created_at, user_id, title, body`

const createPost = `-- name: CreatePost
INSERT INTO posts (id, created_at, user_id, title, body)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + postColumns

// Create post; id and creation time are generated if not set
func (r *PostRepo) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	rows, _ := r.DB.Query(ctx, createPost, p.ID, p.CreatedAt, p.UserID, p.Title, p.Body)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return post, apperrors.ErrUserNotFound
		}
		return post, dbError(err)
	}

	return post, nil
}

const getPost = `-- name: GetPost
SELECT ` + postColumns + ` FROM posts
WHERE id = $1
`

func (r *PostRepo) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPost, postID)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	case err != nil:
		return post, dbError(err)
	}

	return post, nil
}

const listPosts = `-- name: ListPosts
SELECT ` + postColumns + ` FROM posts
WHERE user_id = $1
ORDER BY created_at DESC, id
`

func (r *PostRepo) ListPosts(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts, userID)
	posts, err := pgx.CollectRows(rows, rowToPost)
	if err != nil {
		return nil, dbError(err)
	}

	return posts, nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UserID, &p.Title, &p.Body)
	return p, err
}

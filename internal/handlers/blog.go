package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/handlers/render"
	"github.com/nkiryanov/quill/internal/handlers/userctx"
	"github.com/nkiryanov/quill/internal/logger"
	"github.com/nkiryanov/quill/internal/models"
)

type postResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newPostResponse(p models.Post) postResponse {
	return postResponse{ID: p.ID, Title: p.Title, Body: p.Body, UserID: p.UserID, CreatedAt: p.CreatedAt}
}

func handleCreatePost(bs blogService, logger logger.Logger) http.Handler {
	type request struct {
		Title string `json:"title" validate:"required,max=200"`
		Body  string `json:"body" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userctx.MustFromContext(r.Context())

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		post, err := bs.CreatePost(r.Context(), &user, data.Title, data.Body)
		if err != nil {
			logger.Error("post creation failed", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONStatus(w, newPostResponse(post), http.StatusCreated)
	})
}

func handleListPosts(bs blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userctx.MustFromContext(r.Context())

		posts, err := bs.ListPosts(r.Context(), &user)
		if err != nil {
			logger.Error("posts listing failed", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			res = append(res, newPostResponse(p))
		}
		render.JSON(w, res)
	})
}

func handleGetPost(bs blogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userctx.MustFromContext(r.Context())

		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid post id", http.StatusBadRequest)
			return
		}

		post, err := bs.GetPost(r.Context(), &user, postID)
		switch {
		case err == nil:
			render.JSON(w, newPostResponse(post))
		case errors.Is(err, apperrors.ErrPostNotFound):
			render.ServiceError(w, "Post not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrPermissionDenied):
			render.ServiceError(w, "Post belongs to another user", http.StatusForbidden)
		default:
			logger.Error("post lookup failed", "user_id", user.ID, "post_id", postID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

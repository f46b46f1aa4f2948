package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/handlers/cookies"
	"github.com/nkiryanov/quill/internal/handlers/render"
	"github.com/nkiryanov/quill/internal/handlers/userctx"
	"github.com/nkiryanov/quill/internal/logger"
	"github.com/nkiryanov/quill/internal/models"
)

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *uuid.UUID `json:"created_by"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt, CreatedBy: u.CreatedBy}
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userctx.MustFromContext(r.Context())
		render.JSON(w, newUserResponse(user))
	})
}

func handleCreateUser(as authService, logger logger.Logger) http.Handler {
	type request struct {
		Name     string `json:"name" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creator := userctx.MustFromContext(r.Context())

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := as.CreateUser(r.Context(), creator, data.Name, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			case errors.Is(err, apperrors.ErrNotAuthenticated):
				render.ServiceError(w, "Not authenticated", http.StatusUnauthorized)
			default:
				logger.Error("user creation failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONStatus(w, newUserResponse(user), http.StatusCreated)
	})
}

func handleDeleteMe(as authService, jar cookies.Jar, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userctx.MustFromContext(r.Context())

		err := as.DeleteUser(r.Context(), user, jar.Sink(w))
		if err != nil {
			switch {
			case apperrors.IsAuthFailure(err) && errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				logger.Error("user deletion failed", "user_id", user.ID, "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, messageResponse{Message: "User deleted"})
	})
}

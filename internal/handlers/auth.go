package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/handlers/cookies"
	"github.com/nkiryanov/quill/internal/handlers/render"
	"github.com/nkiryanov/quill/internal/handlers/userctx"
	"github.com/nkiryanov/quill/internal/logger"
)

type messageResponse struct {
	Message string `json:"message"`
}

func handleRoot() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, messageResponse{Message: "Quill is running"})
	})
}

func handleLogin(as authService, jar cookies.Jar, logger logger.Logger) http.Handler {
	type request struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		tokens, err := as.Login(r.Context(), data.Name, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
			return
		case errors.Is(err, apperrors.ErrCredentialInvalid):
			render.ServiceError(w, "Username or Password is incorrect", http.StatusUnauthorized)
			return
		default:
			logger.Error("login failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := as.SetCarriers(jar.Sink(w), tokens); err != nil {
			logger.Error("could not set token cookies", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, messageResponse{Message: "Login Successful"})
	})
}

func handleLogout(as authService, jar cookies.Jar, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		err := as.Logout(r.Context(), user, jar.Sink(w))
		if err != nil {
			logger.Error("logout failed", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, messageResponse{Message: "Logout Successful"})
	})
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/handlers/cookies"
	"github.com/nkiryanov/quill/internal/handlers/render"
	"github.com/nkiryanov/quill/internal/handlers/userctx"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/service/auth"
)

type authService interface {
	Resolve(ctx context.Context, aud models.Audience, accessToken string, refreshToken string, sink auth.CarrierSink) (auth.Resolution, error)
	Carrier(kind models.TokenKind) models.Carrier
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Authenticate request of the audience by its token cookies
// Rotated tokens and cleared cookies are written to the response
func AuthMiddleware(as authService, aud models.Audience, jar cookies.Jar, l errorLogger) func(http.Handler) http.Handler {
	accessCarrier := as.Carrier(models.AccessKind(aud))
	refreshCarrier := as.Carrier(models.RefreshKind(aud))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := as.Resolve(
				r.Context(),
				aud,
				jar.Read(r, accessCarrier),
				jar.Read(r, refreshCarrier),
				jar.Sink(w),
			)

			switch {
			case err == nil:
				ctx := userctx.New(r.Context(), res.User)
				next.ServeHTTP(w, r.WithContext(ctx))
			case !apperrors.IsAuthFailure(err):
				l.Error("authentication failed", "uri", r.RequestURI, "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrSessionMismatch):
				render.ServiceError(w, "Invalid Session", http.StatusUnauthorized)
			default:
				render.ServiceError(w, "Not authenticated", http.StatusUnauthorized)
			}
		})
	}
}

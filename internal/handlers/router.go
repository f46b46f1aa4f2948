package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/quill/internal/handlers/cookies"
	"github.com/nkiryanov/quill/internal/handlers/middleware"
	"github.com/nkiryanov/quill/internal/logger"
	"github.com/nkiryanov/quill/internal/metrics"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	Cookies cookies.Jar
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

func NewRouter(
	cfg RouterConfig,
	authService authService,
	blogService blogService,
) http.Handler {
	logger := cfg.Logger
	jar := cfg.Cookies

	withUserAuth := middleware.AuthMiddleware(authService, models.AudienceUser, jar, logger)
	withBlogAuth := middleware.AuthMiddleware(authService, models.AudienceBlog, jar, logger)

	mux := http.NewServeMux()

	mux.Handle("GET /{$}", handleRoot())
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	mux.Handle("POST /user/login", handleLogin(authService, jar, logger))
	mux.Handle("POST /user/logout", withUserAuth(handleLogout(authService, jar, logger)))
	mux.Handle("GET /user/me", withUserAuth(handleUserMe()))
	mux.Handle("DELETE /user/me", withUserAuth(handleDeleteMe(authService, jar, logger)))
	mux.Handle("POST /user/users", withUserAuth(handleCreateUser(authService, logger)))

	mux.Handle("POST /blog/posts", withBlogAuth(handleCreatePost(blogService, logger)))
	mux.Handle("GET /blog/posts", withBlogAuth(handleListPosts(blogService, logger)))
	mux.Handle("GET /blog/posts/{id}", withBlogAuth(handleGetPost(blogService, logger)))

	handler := chain(mux,
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(cfg.Metrics),
	)

	return handler
}

type authService interface {
	// Login user with name and password
	// Has to return apperrors.ErrUserNotFound if user not found and apperrors.ErrCredentialInvalid if password is wrong
	Login(ctx context.Context, name string, password string) (models.Tokens, error)

	// Put issued tokens into client carriers
	SetCarriers(sink auth.CarrierSink, tokens models.Tokens) error

	// Resolve user from audience tokens; rotate expired access token if refresh token allows
	Resolve(ctx context.Context, aud models.Audience, accessToken string, refreshToken string, sink auth.CarrierSink) (auth.Resolution, error)
	Carrier(kind models.TokenKind) models.Carrier

	Logout(ctx context.Context, user models.User, sink auth.CarrierSink) error

	// Has to return apperrors.ErrUserAlreadyExists if user with the name already exists
	CreateUser(ctx context.Context, creator models.User, name string, password string) (models.User, error)
	DeleteUser(ctx context.Context, user models.User, sink auth.CarrierSink) error
}

type blogService interface {
	CreatePost(ctx context.Context, user *models.User, title string, body string) (models.Post, error)
	ListPosts(ctx context.Context, user *models.User) ([]models.Post, error)

	// Has to return apperrors.ErrPostNotFound or apperrors.ErrPermissionDenied for posts of other users
	GetPost(ctx context.Context, user *models.User, postID uuid.UUID) (models.Post, error)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/quill/internal/db"
	"github.com/nkiryanov/quill/internal/handlers"
	"github.com/nkiryanov/quill/internal/handlers/cookies"
	"github.com/nkiryanov/quill/internal/logger"
	"github.com/nkiryanov/quill/internal/metrics"
	"github.com/nkiryanov/quill/internal/repository"
	"github.com/nkiryanov/quill/internal/repository/memory"
	"github.com/nkiryanov/quill/internal/repository/postgres"
	"github.com/nkiryanov/quill/internal/service/auth"
	"github.com/nkiryanov/quill/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/quill/internal/service/blog"
	"github.com/nkiryanov/quill/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Release resources (db pool) after server stopped
	Close func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	if c.AccessTokenExpire <= 0 || c.RefreshTokenExpire <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	// Initialize services that don't touch storage first: misconfiguration fails fast
	keyring, err := tokenmanager.NewKeyring(tokenmanager.KeyringConfig{
		Secrets:    c.Secrets(),
		Alg:        c.Algorithm,
		AccessTTL:  time.Duration(c.AccessTokenExpire) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshTokenExpire) * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token keyring. Err: %w", err)
	}
	hasher, err := auth.NewHasher(c.PasswordHasher)
	if err != nil {
		return nil, err
	}

	storage, closeStorage, err := openStorage(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userService := user.NewService(hasher, storage)
	blogService := blog.NewService(storage.Post())
	authService, err := auth.NewService(auth.Config{
		Hasher:   hasher,
		Carriers: auth.DefaultCarriers(c.CookieDomain),
		Logger:   logger,
		Metrics:  m,
	}, keyring, storage, userService)
	if err != nil {
		closeStorage()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		handlers.RouterConfig{
			Cookies: cookies.Jar{Secure: c.CookieSecure},
			Logger:  logger,
			Metrics: m,
		},
		authService,
		blogService,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		Logger:     logger,
		Close:      closeStorage,
	}, nil
}

// Storage by DSN: in-memory for 'memory://', postgres otherwise
func openStorage(ctx context.Context, dsn string) (repository.Storage, func(), error) {
	switch {
	case dsn == "":
		return nil, nil, errors.New("database DSN is required")
	case strings.HasPrefix(dsn, memoryDSN):
		return memory.NewStorage(), func() {}, nil
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	return postgres.NewStorage(pool), pool.Close, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-message-board/internal/auth"
	"go-message-board/internal/config"
	"go-message-board/internal/database"
	"go-message-board/internal/event"
	"go-message-board/internal/handler"
	"go-message-board/internal/middleware"
	"go-message-board/internal/repository"
	"go-message-board/internal/router"
	"go-message-board/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	logger       *slog.Logger
	cleanupFuncs []func()
}

// Store is the credential store selected by STORE_DRIVER. DB is nil for the
// memory driver.
type Store struct {
	Users service.CredentialStore
	DB    *database.DB
}

func (s *Store) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

// OpenStore connects the configured credential store, migrating the schema
// first when AUTO_MIGRATE is set.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory credential store; users are lost on restart")
		return &Store{Users: repository.NewMemoryUserRepository()}, nil
	}

	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{Users: repository.NewUserRepository(db.Pool), DB: db}, nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	tokens, err := auth.NewTokenService(
		auth.TokenConfig{Secret: []byte(cfg.JWT.AccessSecret), TTL: cfg.JWT.AccessTTL.Duration()},
		auth.TokenConfig{Secret: []byte(cfg.JWT.RefreshSecret), TTL: cfg.JWT.RefreshTTL.Duration()},
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	bus := event.NewBus()
	auditCtx, auditCancel := context.WithCancel(context.Background())
	auditDone := event.StartAuditLog(auditCtx, bus, logger.With("component", "audit"))

	authService := service.NewAuthService(store.Users, hasher, tokens, bus)
	userService := service.NewUserService(store.Users, hasher, bus)

	// A nil *database.DB must not become a non-nil interface.
	healthHandler := handler.NewHealthHandler(nil)
	if store.DB != nil {
		healthHandler = handler.NewHealthHandler(store.DB)
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService, userService, cfg.CookieSecure),
		User:   handler.NewUserHandler(userService),
		Health: healthHandler,
	})

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return &App{
		server: server,
		logger: logger,
		cleanupFuncs: []func(){
			func() {
				auditCancel()
				<-auditDone
			},
			store.Close,
		},
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.Close()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.Close()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// Close releases the store and stops the audit log.
func (a *App) Close() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
	a.cleanupFuncs = nil
}

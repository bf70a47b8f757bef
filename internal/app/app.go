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

	"employee-records/internal/auth"
	"employee-records/internal/config"
	"employee-records/internal/database"
	"employee-records/internal/handler"
	"employee-records/internal/metrics"
	"employee-records/internal/middleware"
	"employee-records/internal/repository"
	"employee-records/internal/router"
	"employee-records/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.AutoMigrate {
		slog.Info("applying database migrations")
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	handlerChain, err := NewHandler(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlerChain,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

// NewHandler wires repositories, services and handlers on top of an open
// database into the complete HTTP handler.
func NewHandler(cfg *config.Config, db *database.DB) (http.Handler, error) {
	codec, err := auth.NewTokenCodec(cfg.TokenConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	cookies := auth.NewCookieTransport(cfg.CookieName, cfg.CookieSecure)
	if !cfg.CookieSecure {
		slog.Warn("session cookie is not marked Secure; use only for local development")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewCachedRoles(repository.NewRoleRepository(pool), 10*time.Minute)
	employeeRepo := repository.NewEmployeeRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	verifier, err := auth.NewCredentialVerifier(userRepo, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential verifier: %w", err)
	}

	views, err := handler.NewViews()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(verifier, codec, auditService, m)
	userService := service.NewUserService(userRepo, roleRepo, auditService, cfg.BcryptCost)
	employeeService := service.NewEmployeeService(employeeRepo, auditService)

	authMiddleware := middleware.NewAuthMiddleware(codec, cookies, "/unauthorized", m)

	return router.New(cfg, authMiddleware, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cookies, views),
		Employees: handler.NewEmployeeHandler(employeeService, views),
		Users:     handler.NewUserHandler(userService, views),
		Audit:     handler.NewAuditHandler(auditService, views),
	}, m, db), nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}

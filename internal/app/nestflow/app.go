// Package nestflow wires the subscription backend together: storage,
// migrations, cache, services, sweeper and the HTTP server.
package nestflow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/tahiry-dev-29/NestFlow/internal/cache"
	"github.com/tahiry-dev-29/NestFlow/internal/config"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/clock"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/keyset"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/password"
	"github.com/tahiry-dev-29/NestFlow/internal/migrations"
	subscriptionservice "github.com/tahiry-dev-29/NestFlow/internal/services/subscription"
	sweeperservice "github.com/tahiry-dev-29/NestFlow/internal/services/sweeper"
	"github.com/tahiry-dev-29/NestFlow/internal/storage/repository"
)

// App owns the HTTP server and the sweeper lifecycle.
type App struct {
	server  *http.Server
	sweeper *sweeperservice.Service
	logger  *slog.Logger
	db      *repository.Storage
	cfg     *config.Config
}

// New builds the application from the config: opens storage, applies
// migrations, connects the cache and assembles services and routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Shared between the lifecycle service and the sweeper: ids deleted
	// since startup, so a sweep cannot resurrect a removed record.
	deleted := keyset.New()
	clk := clock.New()

	subscriptionService := subscriptionservice.New(
		db, cacheRedis, password.Bcrypt{}, clk, deleted, logger)
	sweeper := sweeperservice.New(db, clk, deleted, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		sweeper: sweeper,
		logger:  logger,
		db:      db,
		cfg:     cfg,
	}, nil
}

// Run starts the sweeper and the HTTP server and blocks until the context is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.sweeper.Start(ctx, a.cfg.SweepSchedule); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.sweeper.Stop()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.sweeper.Stop()
		_ = a.db.DB.Close()
		return err
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talx-hub/gopher-users/internal/api/handlers"
	"github.com/talx-hub/gopher-users/internal/dbmanager"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/repo"
	"github.com/talx-hub/gopher-users/internal/repo/cache"
	"github.com/talx-hub/gopher-users/internal/repo/sqlite"
	"github.com/talx-hub/gopher-users/internal/router"
	"github.com/talx-hub/gopher-users/internal/service/config"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

const (
	connectTimeout    = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = time.Minute
)

// storage is a repository together with its health check and teardown.
type storage struct {
	repo   user.Repository
	pinger handlers.Pinger
	close  func()
}

func openPostgres(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (*storage, error) {
	dbManager := dbmanager.New(cfg.DatabaseURI, log).
		Connect(ctx).
		ApplyMigrations(ctx).
		Ping(ctx)
	if err := dbManager.Error(); err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("db connection error: %w", err)
	}
	if !dbManager.IsConnected() {
		dbManager.Close()
		return nil, errors.New("db connection error: DB is unreachable")
	}

	pool, err := dbManager.GetPool(ctx)
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to get DB pool: %w", err)
	}

	return &storage{
		repo:   repo.NewUserRepository(pool, log),
		pinger: handlers.PingFunc(pool.Ping),
		close:  dbManager.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (*storage, error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err //nolint: wrapcheck // already descriptive
	}

	return &storage{
		repo:   sqlite.NewUserRepository(db, log),
		pinger: handlers.PingFunc(db.PingContext),
		close: func() {
			if err := db.Close(); err != nil {
				log.LogAttrs(context.Background(),
					slog.LevelWarn,
					"failed to close sqlite DB",
					slog.Any(model.KeyLoggerError, err),
				)
			}
		},
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (*storage, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, log)
	case config.StorageSQLite:
		return openSQLite(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

// withCache wraps s in a Redis cache when one is configured. An unreachable
// Redis is logged and the service runs uncached.
func withCache(ctx context.Context, s *storage, cfg *config.Config, log *slog.Logger) {
	if !cfg.CacheEnabled() {
		return
	}

	client, err := cache.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelWarn,
			"cache is disabled",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}

	s.repo = cache.NewCachedRepository(s.repo, client, cfg.CacheTTL, log)
	closeStorage := s.close
	s.close = func() {
		if err := client.Close(); err != nil {
			log.LogAttrs(context.Background(),
				slog.LevelWarn,
				"failed to close redis client",
				slog.Any(model.KeyLoggerError, err),
			)
		}
		closeStorage()
	}
}

func initService(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (*chi.Mux, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	s, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	withCache(ctx, s, cfg, log)

	rr := router.New(log)
	rr.SetRouter(handlers.New(
		s.repo, s.pinger, semaphore.New(cfg.HashConcurrency), log))

	return rr.GetRouter(), s.close, nil
}

func serve(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.LogAttrs(ctx, slog.LevelInfo, "server started",
			slog.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	case <-ctx.Done():
	}

	log.LogAttrs(context.Background(), slog.LevelInfo, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve error: %w", err)
	}
	return nil
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	mux, closeStorage, err := initService(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to init service: %w", err)
	}
	defer closeStorage()

	srv := &http.Server{
		Addr:              cfg.RunAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return serve(ctx, srv, log)
}

func RunServer() {
	cfg := config.NewBuilder(slog.Default()).
		FromDotEnv().
		FromEnv().
		FromFlags().
		GetConfig()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Default().LogAttrs(context.Background(),
			slog.LevelWarn,
			"falling back to info log level",
			slog.Any(model.KeyLoggerError, err),
		)
	}
	log := logger.New(level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err = Run(ctx, cfg, log); err != nil {
		log.LogAttrs(context.Background(),
			slog.LevelError,
			"service stopped with error",
			slog.Any(model.KeyLoggerError, err),
		)
		stop()
		os.Exit(1)
	}
	log.LogAttrs(context.Background(), slog.LevelInfo, "service stopped")
}

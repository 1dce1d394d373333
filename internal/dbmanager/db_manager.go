package dbmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/talx-hub/gopher-users/internal/migrations"
	"github.com/talx-hub/gopher-users/internal/model"
)

// DBManager owns the connection pool. Its methods chain; the first failure
// sticks and is reported by Error.
type DBManager struct {
	log         *slog.Logger
	pool        *pgxpool.Pool
	err         error
	dsn         string
	isConnected bool
}

func New(dsn string, log *slog.Logger) *DBManager {
	return &DBManager{
		log:         log,
		pool:        nil,
		err:         nil,
		dsn:         dsn,
		isConnected: false,
	}
}

func (m *DBManager) Connect(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}

	cfg, err := pgxpool.ParseConfig(m.dsn)
	if err != nil {
		m.fail(ctx, "failed to parse DSN", err)
		return m
	}
	cfg.MinConns = 1
	cfg.MaxConns = 10
	cfg.ConnConfig.Tracer = &queryTracer{m.log}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		m.fail(ctx, "failed to init pgxpool", err)
		return m
	}

	m.pool = pool
	return m
}

func (m *DBManager) Ping(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}
	if m.pool == nil {
		m.fail(ctx, "failed to ping the DB", errors.New("not connected"))
		return m
	}

	if err := m.pool.Ping(ctx); err != nil {
		m.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to ping the DB",
			slog.Any(model.KeyLoggerError, err),
		)
		m.isConnected = false
		return m
	}

	m.isConnected = true
	return m
}

// IsConnected reports the outcome of the last Ping.
func (m *DBManager) IsConnected() bool {
	return m.isConnected
}

// ApplyMigrations brings the schema up to date. Running it on an up-to-date
// schema is a no-op.
func (m *DBManager) ApplyMigrations(ctx context.Context) *DBManager {
	if m.err != nil {
		return m
	}
	if m.pool == nil {
		m.fail(ctx, "failed to apply migrations", errors.New("not connected"))
		return m
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		m.fail(ctx, "failed to open migrations source", err)
		return m
	}

	sqlDB := stdlib.OpenDBFromPool(m.pool)
	defer func() {
		if err := sqlDB.Close(); err != nil {
			m.log.LogAttrs(ctx,
				slog.LevelWarn,
				"failed to close migrations connection",
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}()

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		m.fail(ctx, "failed to init migrations driver", err)
		return m
	}

	mg, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		m.fail(ctx, "failed to init migrations", err)
		return m
	}
	defer func() {
		if srcErr, dbErr := mg.Close(); srcErr != nil || dbErr != nil {
			m.log.LogAttrs(ctx,
				slog.LevelWarn,
				"failed to release migrations",
				slog.Any(model.KeyLoggerError, errors.Join(srcErr, dbErr)),
			)
		}
	}()

	if err = mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.fail(ctx, "failed to apply migrations", err)
		return m
	}

	m.log.LogAttrs(ctx, slog.LevelInfo, "migrations applied")
	return m
}

func (m *DBManager) Error() error {
	return m.err
}

func (m *DBManager) GetPool(_ context.Context) (*pgxpool.Pool, error) {
	if m.pool == nil {
		return nil, errors.New("connection pool is not initialized")
	}
	return m.pool, nil
}

func (m *DBManager) Close() {
	if m.pool == nil {
		return
	}

	m.pool.Close()
	m.log.LogAttrs(context.TODO(),
		slog.LevelInfo,
		"connection to DB closed",
	)
}

func (m *DBManager) fail(ctx context.Context, msg string, err error) {
	m.log.LogAttrs(ctx,
		slog.LevelError,
		msg,
		slog.Any(model.KeyLoggerError, err),
	)
	m.err = fmt.Errorf("%s: %w", msg, err)
}

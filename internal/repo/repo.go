package repo

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

type connectionPool interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type DB struct {
	pool connectionPool
	log  *slog.Logger
}

// fail logs the driver error and hides it behind a RepositoryError.
func (db *DB) fail(ctx context.Context, op string, err error) error {
	kind := classify(err)
	db.log.LogAttrs(ctx,
		slog.LevelError,
		"repository operation failed",
		slog.String("op", op),
		slog.String("kind", kind.String()),
		slog.Any(model.KeyLoggerError, err),
	)
	return serviceerrs.NewRepositoryError(op, kind)
}

func classify(err error) serviceerrs.ErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return serviceerrs.KindConstraint
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CrashShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow,
			pgErr.Code == pgerrcode.TooManyConnections:
			return serviceerrs.KindConnection
		}
		return serviceerrs.KindUnexpected
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		pgconn.SafeToRetry(err):
		return serviceerrs.KindConnection
	}

	return serviceerrs.KindUnexpected
}

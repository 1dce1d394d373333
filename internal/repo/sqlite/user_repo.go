// Package sqlite stores users in SQLite through database/sql.
//
// A repository pins a single connection, so an in-memory database keeps its
// contents for the repository's lifetime and concurrent callers are
// serialised by database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"

	"github.com/talx-hub/gopher-users/internal/migrations"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/password"
)

const driverName = "sqlite3"

// errDBClosedText is what database/sql returns for a closed *sql.DB. The
// error is not exported.
const errDBClosedText = "sql: database is closed"

const (
	queryGetUsers = `SELECT id, email, encrypted_password, salt
		FROM users`
	queryGetUserByID = `SELECT id, email, encrypted_password, salt
		FROM users
		WHERE id = ?`
	queryInsertUser = `INSERT INTO users (id, email, encrypted_password, salt)
		VALUES (?, ?, ?, ?)`
	queryDeleteUser = `DELETE FROM users
		WHERE id = ?`
)

const (
	opGetUsers    = "get users"
	opGetUserByID = "get user by id"
	opInsertUser  = "insert user"
	opDeleteUser  = "delete user"
)

// DBTX is the subset of database/sql the repository needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewUserRepository(db DBTX, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

// Open opens the database at dsn, pins it to one connection and migrates it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite DB: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite DB: %w", err)
	}
	if err = applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migrations source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		return nil, r.fail(ctx, opGetUsers, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.LogAttrs(ctx,
				slog.LevelWarn,
				"failed to close rows",
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, r.fail(ctx, opGetUsers, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, r.fail(ctx, opGetUsers, err)
	}
	return users, nil
}

// GetUserByID returns the first matching row.
func (r *UserRepository) GetUserByID(ctx context.Context, id string,
) (*user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, queryGetUserByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, opGetUserByID, err)
	}
	return &u, nil
}

func (r *UserRepository) InsertUser(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx, queryInsertUser,
		u.ID, u.Email, u.Credential.Hash(), u.Credential.Salt())
	if err != nil {
		return r.fail(ctx, opInsertUser, err)
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, queryDeleteUser, id)
	if err != nil {
		return r.fail(ctx, opDeleteUser, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return r.fail(ctx, opDeleteUser, err)
	}
	if n == 0 {
		return serviceerrs.NewRepositoryError(opDeleteUser, serviceerrs.KindNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (user.User, error) {
	var (
		u          user.User
		hash, salt string
	)
	if err := row.Scan(&u.ID, &u.Email, &hash, &salt); err != nil {
		return user.User{}, err //nolint: wrapcheck // classified by the caller
	}
	u.Credential = password.Restore(hash, salt)
	return u, nil
}

func (r *UserRepository) fail(ctx context.Context, op string, err error) error {
	kind := classify(err)
	r.log.LogAttrs(ctx,
		slog.LevelError,
		"repository operation failed",
		slog.String("op", op),
		slog.String("kind", kind.String()),
		slog.Any(model.KeyLoggerError, err),
	)
	return serviceerrs.NewRepositoryError(op, kind)
}

func classify(err error) serviceerrs.ErrorKind {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return serviceerrs.KindConstraint
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked,
			sqlite3.ErrIoErr, sqlite3.ErrNotADB:
			return serviceerrs.KindConnection
		}
		return serviceerrs.KindUnexpected
	}

	switch {
	case errors.Is(err, sql.ErrConnDone),
		strings.Contains(err.Error(), errDBClosedText),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return serviceerrs.KindConnection
	}
	return serviceerrs.KindUnexpected
}

package repo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/password"
)

const (
	queryGetUsers = `SELECT id, email, encrypted_password, salt
		FROM users`
	queryGetUserByID = `SELECT id, email, encrypted_password, salt
		FROM users
		WHERE id = $1`
	queryInsertUser = `INSERT INTO users (id, email, encrypted_password, salt)
		VALUES ($1, $2, $3, $4)`
	queryDeleteUser = `DELETE FROM users
		WHERE id = $1`
)

const (
	opGetUsers    = "get users"
	opGetUserByID = "get user by id"
	opInsertUser  = "insert user"
	opDeleteUser  = "delete user"
)

type UserRepository struct {
	DB
}

func NewUserRepository(pool connectionPool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, queryGetUsers)
	if err != nil {
		return nil, r.fail(ctx, opGetUsers, err)
	}

	users, err := pgx.CollectRows(rows,
		func(row pgx.CollectableRow) (user.User, error) {
			return scanUser(row)
		})
	if err != nil {
		return nil, r.fail(ctx, opGetUsers, err)
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}

// GetUserByID takes the first row if the id is ever duplicated; the schema
// declares id as the primary key, so that should not happen.
func (r *UserRepository) GetUserByID(ctx context.Context, id string,
) (*user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, queryGetUserByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, opGetUserByID, err)
	}
	return &u, nil
}

func (r *UserRepository) InsertUser(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, queryInsertUser,
		u.ID, u.Email, u.Credential.Hash(), u.Credential.Salt())
	if err != nil {
		return r.fail(ctx, opInsertUser, err)
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, queryDeleteUser, id)
	if err != nil {
		return r.fail(ctx, opDeleteUser, err)
	}
	if tag.RowsAffected() == 0 {
		return serviceerrs.NewRepositoryError(opDeleteUser, serviceerrs.KindNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (user.User, error) {
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

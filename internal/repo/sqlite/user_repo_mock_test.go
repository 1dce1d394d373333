package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewUserRepository(db, slog.Default()), mock
}

var userColumns = []string{"id", "email", "encrypted_password", "salt"}

func TestGetUsers_mock(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantLen  int
		wantKind serviceerrs.ErrorKind
		wantErr  bool
	}{
		{
			name: "two rows",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users`).
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("1", "a@test.com", "hash", "salt").
						AddRow("2", "b@test.com", "hash", "salt"))
			},
			wantLen: 2,
		},
		{
			name: "no rows",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users`).
					WillReturnRows(sqlmock.NewRows(userColumns))
			},
			wantLen: 0,
		},
		{
			name: "connection done",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantKind: serviceerrs.KindConnection,
			wantErr:  true,
		},
		{
			name: "row error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users`).
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("1", "a@test.com", "hash", "salt").
						RowError(0, sqlite3.Error{Code: sqlite3.ErrIoErr}))
			},
			wantKind: serviceerrs.KindConnection,
			wantErr:  true,
		},
		{
			name: "malformed row",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))
			},
			wantKind: serviceerrs.KindUnexpected,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock)

			users, err := repo.GetUsers(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, users)
				assert.Equal(t, tt.wantKind, serviceerrs.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.NotNil(t, users)
				assert.Len(t, users, tt.wantLen)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByID_mock(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("1", "first@test.com", "hash-1", "salt-1").
			AddRow("1", "second@test.com", "hash-2", "salt-2"))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
		WithArgs("2").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})

	got, err := repo.GetUserByID(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first@test.com", got.Email, "the first matching row wins")
	assert.Equal(t, "hash-1", got.Credential.Hash())
	assert.Equal(t, "salt-1", got.Credential.Salt())

	got, err = repo.GetUserByID(context.Background(), "2")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, serviceerrs.ErrConnection)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUser_mock(t *testing.T) {
	u, err := user.NewWithID("1", "a@test.com", "test", &testSalt)
	require.NoError(t, err)

	tests := []struct {
		name    string
		result  error
		wantErr error
	}{
		{"ok", nil, nil},
		{"constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, serviceerrs.ErrConstraint},
		{"cannot open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, serviceerrs.ErrConnection},
		{"unknown", errors.New("disk on fire"), serviceerrs.ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			exp := mock.ExpectExec(`INSERT INTO users`).
				WithArgs(u.ID, u.Email, u.Credential.Hash(), u.Credential.Salt())
			if tt.result != nil {
				exp.WillReturnError(tt.result)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.InsertUser(context.Background(), &u)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteUser_mock(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(exp *sqlmock.ExpectedExec)
		wantErr error
	}{
		{
			name: "deleted",
			setup: func(exp *sqlmock.ExpectedExec) {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "nothing deleted",
			setup: func(exp *sqlmock.ExpectedExec) {
				exp.WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: serviceerrs.ErrNotFound,
		},
		{
			name: "rows affected unavailable",
			setup: func(exp *sqlmock.ExpectedExec) {
				exp.WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows affected")))
			},
			wantErr: serviceerrs.ErrUnexpected,
		},
		{
			name: "locked",
			setup: func(exp *sqlmock.ExpectedExec) {
				exp.WillReturnError(sqlite3.Error{Code: sqlite3.ErrLocked})
			},
			wantErr: serviceerrs.ErrConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			tt.setup(mock.ExpectExec(`DELETE FROM users WHERE id = \?`).WithArgs("1"))

			err := repo.DeleteUser(context.Background(), "1")
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

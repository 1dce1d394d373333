package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/talx-hub/gopher-users/internal/utils/password"
)

type User struct {
	ID         string
	Email      string
	Credential password.HashSalt
}

// New creates a user with a fresh id and a fresh salt.
func New(email, plaintext string) (User, error) {
	return NewWithID(uuid.NewString(), email, plaintext, nil)
}

// NewWithID creates a user with the given id. A nil salt is replaced by a
// random one; a fixed salt gives a reproducible credential.
func NewWithID(id, email, plaintext string, salt *password.Salt,
) (User, error) {
	var cred password.HashSalt
	if salt != nil {
		cred = password.EncryptWithSalt(plaintext, *salt)
	} else {
		var err error
		cred, err = password.Encrypt(plaintext)
		if err != nil {
			return User{}, fmt.Errorf("failed to encrypt password: %w", err)
		}
	}

	return User{
		ID:         id,
		Email:      email,
		Credential: cred,
	}, nil
}

// Repository persists users. Every failure is a *serviceerrs.RepositoryError.
type Repository interface {
	// GetUsers returns every stored user in no particular order.
	// An empty store gives an empty slice.
	GetUsers(ctx context.Context) ([]User, error)

	// GetUserByID returns nil, nil when no user has the id.
	GetUserByID(ctx context.Context, id string) (*User, error)

	InsertUser(ctx context.Context, u *User) error

	// DeleteUser fails with serviceerrs.ErrNotFound when nothing was deleted.
	DeleteUser(ctx context.Context, id string) error
}

package dto

import (
	"errors"

	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/talx-hub/gopher-users/internal/model/user"
)

const minEntropyBits = 50

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *CreateUserRequest) IsValid() error {
	var invalidEmailErr error
	if r.Email == "" {
		invalidEmailErr = errors.New("email is empty")
	}

	invalidPasswordErr := passwordvalidator.Validate(r.Password, minEntropyBits)
	return errors.Join(invalidEmailErr, invalidPasswordErr)
}

type VerifyRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
	}
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

func NewUsersResponse(users []user.User) UsersResponse {
	resp := UsersResponse{
		Users: make([]UserResponse, 0, len(users)),
	}
	for i := range users {
		resp.Users = append(resp.Users, NewUserResponse(&users[i]))
	}
	return resp
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// ErrorResponse names the failure. The body is the bare name, e.g. "NotFound".
type ErrorResponse string

const (
	ErrNotFound       ErrorResponse = "NotFound"
	ErrInternal       ErrorResponse = "InternalError"
	ErrBadRequest     ErrorResponse = "BadRequest"
	ErrCreationFailed ErrorResponse = "CreationFailed"
	ErrConflict       ErrorResponse = "Conflict"
)

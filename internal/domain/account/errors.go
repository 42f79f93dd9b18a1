package account

import "errors"

var (
	// ErrInvalidInput indicates missing or malformed account fields.
	ErrInvalidInput = errors.New("invalid account input")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates the user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
)

package session

import "errors"

var (
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
	// ErrSessionClosed indicates the session was signed out or expired.
	ErrSessionClosed = errors.New("session closed")
	// ErrUserMismatch indicates a session id was presented for another user.
	ErrUserMismatch = errors.New("session belongs to another user")
)

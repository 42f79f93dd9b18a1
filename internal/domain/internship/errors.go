package internship

import "errors"

var (
	// ErrNotAuthenticated indicates an action without an active user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRecordNotFound indicates the id is absent from the user's collection.
	ErrRecordNotFound = errors.New("internship not found")
	// ErrInvalidTransition indicates the action is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStoreFailure indicates the backing store call failed.
	ErrStoreFailure = errors.New("store failure")
	// ErrInvalidInput indicates invalid internship input.
	ErrInvalidInput = errors.New("invalid internship input")
)

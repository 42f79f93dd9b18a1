package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/internship"
)

// APIError is the error payload of a failed tool call.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Reason       string `json:"reason,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. reason is the
// human-readable explanation from the action result, if any.
func MapError(err error, reason string) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, internship.ErrNotAuthenticated):
		return &APIError{Code: "NOT_AUTHENTICATED", Message: "not signed in", Reason: reason, RecoveryHint: "Sign in and pass the bearer token"}
	case errors.Is(err, internship.ErrRecordNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "internship not found", Reason: reason, RecoveryHint: "Call list_internships for valid ids"}
	case errors.Is(err, internship.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: "action not allowed for the current status", Reason: reason, RecoveryHint: "Check the internship's status first"}
	case errors.Is(err, internship.ErrStoreFailure):
		return &APIError{Code: "STORE_FAILURE", Message: "the store call failed", Reason: reason, RecoveryHint: "Retry the action"}
	case errors.Is(err, internship.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), Reason: reason}
	case errors.Is(err, history.ErrExportDisabled):
		return &APIError{Code: "EXPORT_DISABLED", Message: err.Error(), Reason: reason}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error(), Reason: reason}
	}
}

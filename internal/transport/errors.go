package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
)

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorReason(w http.ResponseWriter, status int, code, message, reason string) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message, Reason: reason})
}

// writeError maps domain errors onto HTTP status codes. reason is the
// human-readable explanation shown to the user; the error text is used when
// it is empty.
func writeError(w http.ResponseWriter, err error, reason string) {
	status, code := classify(err)
	message := http.StatusText(status)
	switch {
	case status < http.StatusInternalServerError:
		message = err.Error()
	case errors.Is(err, internship.ErrStoreFailure):
		message = internship.ErrStoreFailure.Error()
	}
	if reason == "" && status < http.StatusInternalServerError {
		reason = err.Error()
	}
	writeErrorReason(w, status, code, message, reason)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, internship.ErrNotAuthenticated),
		errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrUserMismatch),
		errors.Is(err, session.ErrSessionClosed):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, internship.ErrRecordNotFound),
		errors.Is(err, account.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, internship.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, account.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, internship.ErrStoreFailure):
		return http.StatusBadGateway, "store_failure"
	case errors.Is(err, internship.ErrInvalidInput),
		errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, history.ErrExportDisabled):
		return http.StatusNotImplemented, "export_disabled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/rpggio/interntrack/internal/auth"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// SessionResolver returns the live session named by a token, recreating it
// after a restart.
type SessionResolver interface {
	Ensure(id, userID string) (*session.Session, error)
}

// AuthMiddleware enforces bearer token authentication and puts the caller's
// session in the request context.
func AuthMiddleware(tokens TokenParser, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" || token == header {
				writeErrorReason(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token", "sign in first")
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				writeErrorReason(w, http.StatusUnauthorized, "unauthenticated", "invalid bearer token", err.Error())
				return
			}

			sess, err := sessions.Ensure(claims.SessionID, claims.UserID)
			if err != nil {
				writeErrorReason(w, http.StatusUnauthorized, "unauthenticated", "session rejected", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// UserFromContext returns the authenticated user id, if present.
func UserFromContext(ctx context.Context) (string, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return sess.UserID, true
}

func requireSession(r *http.Request) (*session.Session, error) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		return nil, internship.ErrNotAuthenticated
	}
	return sess, nil
}

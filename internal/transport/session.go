package transport

import (
	"context"

	"github.com/rpggio/interntrack/internal/domain/session"
)

type sessionKey struct{}

// WithSession stores the caller's session in ctx.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the caller's session, if present.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok && sess != nil
}

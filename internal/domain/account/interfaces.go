package account

import (
	"context"
	"time"

	"github.com/rpggio/interntrack/internal/domain/session"
)

// UserRepository provides persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateNotifier(ctx context.Context, id string, notifier Notifier) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID, sessionID string) (string, time.Time, error)
}

// Sessions opens and closes login sessions.
type Sessions interface {
	Open(userID string) (*session.Session, error)
	Close(id string) error
}

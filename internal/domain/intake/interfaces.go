package intake

import (
	"context"

	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/internship"
)

// Store persists new postings.
type Store interface {
	ListLinks(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, userID string, rec *internship.Internship) error
}

// NotifierSettings looks up where a user wants to be notified.
type NotifierSettings interface {
	Notifier(ctx context.Context, userID string) (account.Notifier, error)
}

// Sender delivers a text message to a Telegram chat.
type Sender interface {
	Send(ctx context.Context, botToken, chatID, text string) error
}

// ActivityRecorder appends to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, userID, sessionID string, internshipID int64, typ activity.ActivityType, summary string, details map[string]any)
}

// Observer counts intake and notification results.
type Observer interface {
	PostingsReceived(created, duplicates int)
	NotificationSent(err error)
}

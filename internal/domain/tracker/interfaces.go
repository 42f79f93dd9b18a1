package tracker

import (
	"context"

	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/internship"
)

// Store applies mutations to a user's internships.
type Store interface {
	UpdateStatus(ctx context.Context, userID string, id int64, status internship.Status) error
	Delete(ctx context.Context, userID string, id int64) error
}

// ActivityRecorder appends to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, userID, sessionID string, internshipID int64, typ activity.ActivityType, summary string, details map[string]any)
}

// Observer is told the outcome of every action.
type Observer interface {
	ActionCompleted(action, outcome string)
}

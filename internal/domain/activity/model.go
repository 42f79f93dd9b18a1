package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeInternshipAdded    ActivityType = "internship_added"
	TypeStatusChanged      ActivityType = "status_changed"
	TypeInternshipRejected ActivityType = "internship_rejected"
	TypeInternshipDeleted  ActivityType = "internship_deleted"
	TypeDeleteIncomplete   ActivityType = "delete_incomplete"
)

// ActivityEntry represents an event in a user's activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	UserID       string       `json:"user_id"`
	InternshipID *int64       `json:"internship_id,omitempty"`
	SessionID    *string      `json:"session_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

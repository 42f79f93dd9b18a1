package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const defaultListLimit = 50

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an entry with the current timestamp if missing.
func (s *Service) Log(ctx context.Context, userID string, entry *ActivityEntry) error {
	if entry == nil || userID == "" || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	entry.UserID = userID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, userID, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Record builds and logs an entry about one internship. details is encoded as
// JSON; a nil map leaves Details empty. Failures are logged, not returned.
func (s *Service) Record(ctx context.Context, userID, sessionID string, internshipID int64, typ ActivityType, summary string, details map[string]any) {
	entry := &ActivityEntry{
		ActivityType: typ,
		Summary:      summary,
	}
	if internshipID != 0 {
		entry.InternshipID = &internshipID
	}
	if sessionID != "" {
		entry.SessionID = &sessionID
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		}
	}
	if err := s.Log(ctx, userID, entry); err != nil && s.logger != nil {
		s.logger.Warn("activity not recorded", "type", typ, "user_id", userID, "error", err)
	}
}

// GetRecentActivity lists a user's activity entries, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, userID string, opts ListActivityOptions) ([]ActivityEntry, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	entries, err := s.repo.List(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}

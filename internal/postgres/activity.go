package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/internship"
)

// ActivityRepository implements activity.Repository on Postgres.
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts an activity entry.
func (r *ActivityRepository) Log(ctx context.Context, userID string, entry *activity.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	const q = `
INSERT INTO activity_log (user_id, internship_id, session_id, activity_type, summary, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	err := r.db.QueryRow(ctx, q,
		userID, entry.InternshipID, entry.SessionID, string(entry.ActivityType),
		entry.Summary, entry.Details, internship.FormatTimestamp(createdAt),
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	entry.UserID = userID
	entry.CreatedAt = createdAt
	return nil
}

// List returns activity entries matching opts, newest first.
func (r *ActivityRepository) List(ctx context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	var b strings.Builder
	b.WriteString(`
SELECT id, user_id, internship_id, session_id, activity_type, summary, details, created_at
FROM activity_log
WHERE user_id = $1`)
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&b, " AND %s = $%d", cond, len(args))
	}
	if opts.InternshipID != nil {
		add("internship_id", *opts.InternshipID)
	}
	if opts.SessionID != nil {
		add("session_id", *opts.SessionID)
	}
	if opts.ActivityType != nil {
		add("activity_type", string(*opts.ActivityType))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.ActivityEntry{}
	for rows.Next() {
		var e activity.ActivityEntry
		var typ, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.InternshipID, &e.SessionID, &typ, &e.Summary, &e.Details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.ActivityType = activity.ActivityType(typ)
		e.CreatedAt, _ = internship.ParseTimestamp(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return entries, nil
}

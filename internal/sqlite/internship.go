package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/repository"
)

// InternshipRepository implements internship.Repository for SQLite
type InternshipRepository struct {
	db *DB
}

// NewInternshipRepository creates a new InternshipRepository
func NewInternshipRepository(db *DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

const internshipColumns = `
	id, user_id, job_title, company_name, job_description, application_link,
	source_url, source_site, status, created_at
`

// ListByUser returns the user's internships in insertion order
func (r *InternshipRepository) ListByUser(ctx context.Context, userID string) ([]internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE user_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	defer rows.Close()

	records := []internship.Internship{}
	for rows.Next() {
		rec, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internship: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating internship rows: %w", err)
	}
	return records, nil
}

// Get retrieves one internship
func (r *InternshipRepository) Get(ctx context.Context, userID string, id int64) (*internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE user_id = ? AND id = ?`

	rec, err := scanInternship(r.db.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}
	return rec, nil
}

// Create inserts a new internship and sets its ID. The status is stored
// canonical and created_at defaults to now.
func (r *InternshipRepository) Create(ctx context.Context, userID string, rec *internship.Internship) error {
	if userID == "" || rec == nil {
		return repository.ErrInvalidInput
	}
	rec.UserID = userID
	rec.Status = internship.ParseStatus(string(rec.Status))
	if rec.CreatedAt == "" {
		rec.CreatedAt = internship.FormatTimestamp(time.Now())
	}

	query := `
		INSERT INTO internships (
			user_id, job_title, company_name, job_description, application_link,
			source_url, source_site, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.JobTitle,
		rec.CompanyName,
		rec.JobDescription,
		rec.ApplicationLink,
		rec.SourceURL,
		rec.SourceSite,
		rec.Status,
		rec.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create internship: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read internship id: %w", err)
	}
	rec.ID = id
	return nil
}

// UpdateStatus sets the status of one internship
func (r *InternshipRepository) UpdateStatus(ctx context.Context, userID string, id int64, status internship.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE internships SET status = ? WHERE user_id = ? AND id = ?`,
		internship.ParseStatus(string(status)), userID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update internship status: %w", err)
	}
	return requireOneRow(result)
}

// Delete removes one internship
func (r *InternshipRepository) Delete(ctx context.Context, userID string, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM internships WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete internship: %w", err)
	}
	return requireOneRow(result)
}

// ListLinks returns the user's non-empty application links
func (r *InternshipRepository) ListLinks(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT application_link FROM internships WHERE user_id = ? AND application_link != ''`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []string
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link rows: %w", err)
	}
	return links, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInternship(row rowScanner) (*internship.Internship, error) {
	var rec internship.Internship
	var status string
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.JobTitle,
		&rec.CompanyName,
		&rec.JobDescription,
		&rec.ApplicationLink,
		&rec.SourceURL,
		&rec.SourceSite,
		&status,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = internship.Status(status)
	return &rec, nil
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

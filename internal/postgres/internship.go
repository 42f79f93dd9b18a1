package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/repository"
)

// InternshipRepository implements internship.Repository on Postgres.
type InternshipRepository struct {
	db *pgxpool.Pool
}

// NewInternshipRepository creates a new InternshipRepository.
func NewInternshipRepository(db *pgxpool.Pool) *InternshipRepository {
	return &InternshipRepository{db: db}
}

const internshipColumns = `id, user_id, job_title, company_name, job_description, application_link,
source_url, source_site, status, created_at`

// ListByUser returns the user's internships in insertion order.
func (r *InternshipRepository) ListByUser(ctx context.Context, userID string) ([]internship.Internship, error) {
	q := `SELECT ` + internshipColumns + ` FROM internships WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	defer rows.Close()

	records := []internship.Internship{}
	for rows.Next() {
		rec, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate internships: %w", err)
	}
	return records, nil
}

// Get returns one internship.
func (r *InternshipRepository) Get(ctx context.Context, userID string, id int64) (*internship.Internship, error) {
	q := `SELECT ` + internshipColumns + ` FROM internships WHERE user_id = $1 AND id = $2`
	rec, err := scanInternship(r.db.QueryRow(ctx, q, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	return rec, nil
}

// Create inserts a new internship and sets its ID.
func (r *InternshipRepository) Create(ctx context.Context, userID string, rec *internship.Internship) error {
	if userID == "" || rec == nil {
		return repository.ErrInvalidInput
	}
	rec.UserID = userID
	rec.Status = internship.ParseStatus(string(rec.Status))
	if rec.CreatedAt == "" {
		rec.CreatedAt = internship.FormatTimestamp(time.Now())
	}

	const q = `
INSERT INTO internships (user_id, job_title, company_name, job_description, application_link,
	source_url, source_site, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
	err := r.db.QueryRow(ctx, q,
		rec.UserID, rec.JobTitle, rec.CompanyName, rec.JobDescription, rec.ApplicationLink,
		rec.SourceURL, rec.SourceSite, string(rec.Status), rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("insert internship: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of one internship.
func (r *InternshipRepository) UpdateStatus(ctx context.Context, userID string, id int64, status internship.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE internships SET status = $1 WHERE user_id = $2 AND id = $3`,
		string(internship.ParseStatus(string(status))), userID, id,
	)
	if err != nil {
		return fmt.Errorf("update internship status: %w", err)
	}
	return requireOneRow(tag)
}

// Delete removes one internship.
func (r *InternshipRepository) Delete(ctx context.Context, userID string, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM internships WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	return requireOneRow(tag)
}

// ListLinks returns the user's non-empty application links.
func (r *InternshipRepository) ListLinks(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT application_link FROM internships WHERE user_id = $1 AND application_link <> ''`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	links, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect links: %w", err)
	}
	return links, nil
}

func scanInternship(row pgx.Row) (*internship.Internship, error) {
	var rec internship.Internship
	var status string
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.JobTitle, &rec.CompanyName, &rec.JobDescription,
		&rec.ApplicationLink, &rec.SourceURL, &rec.SourceSite, &status, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = internship.Status(status)
	return &rec, nil
}

func requireOneRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

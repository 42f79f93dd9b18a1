package internship

import "context"

// Repository persists internships. Every call is scoped to one user.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Internship, error)
	Get(ctx context.Context, userID string, id int64) (*Internship, error)
	Create(ctx context.Context, userID string, rec *Internship) error
	UpdateStatus(ctx context.Context, userID string, id int64, status Status) error
	Delete(ctx context.Context, userID string, id int64) error
	ListLinks(ctx context.Context, userID string) ([]string, error)
}

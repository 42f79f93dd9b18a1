package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/repository"
)

// UserRepository implements account.UserRepository on Postgres.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A taken email yields repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	if user == nil || user.ID == "" || user.Email == "" {
		return repository.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO users (id, email, username, password_hash, telegram_bot_token, telegram_chat_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := r.db.Exec(ctx, q,
		user.ID, user.Email, user.Username, user.PasswordHash,
		user.Notifier.TelegramBotToken, user.Notifier.TelegramChatID,
		internship.FormatTimestamp(user.CreatedAt),
	)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get returns a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*account.User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return r.getBy(ctx, `email = $1`, email)
}

// UpdateNotifier replaces the user's Telegram settings.
func (r *UserRepository) UpdateNotifier(ctx context.Context, id string, notifier account.Notifier) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET telegram_bot_token = $1, telegram_chat_id = $2 WHERE id = $3`,
		notifier.TelegramBotToken, notifier.TelegramChatID, id,
	)
	if err != nil {
		return fmt.Errorf("update notifier: %w", err)
	}
	return requireOneRow(tag)
}

func (r *UserRepository) getBy(ctx context.Context, where, value string) (*account.User, error) {
	q := `
SELECT id, email, username, password_hash, telegram_bot_token, telegram_chat_id, created_at
FROM users
WHERE ` + where

	var u account.User
	var createdAt string
	err := r.db.QueryRow(ctx, q, value).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Notifier.TelegramBotToken, &u.Notifier.TelegramChatID, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt, _ = internship.ParseTimestamp(createdAt)
	return &u, nil
}

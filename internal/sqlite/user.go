package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/repository"
)

// UserRepository implements account.UserRepository for SQLite
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
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

	query := `
		INSERT INTO users (id, email, username, password_hash, telegram_bot_token, telegram_chat_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Notifier.TelegramBotToken,
		user.Notifier.TelegramChatID,
		internship.FormatTimestamp(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*account.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return r.getBy(ctx, "email", email)
}

// UpdateNotifier replaces the user's Telegram settings
func (r *UserRepository) UpdateNotifier(ctx context.Context, id string, notifier account.Notifier) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET telegram_bot_token = ?, telegram_chat_id = ? WHERE id = ?`,
		notifier.TelegramBotToken, notifier.TelegramChatID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update notifier: %w", err)
	}
	return requireOneRow(result)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*account.User, error) {
	query := `
		SELECT id, email, username, password_hash, telegram_bot_token, telegram_chat_id, created_at
		FROM users
		WHERE ` + column + ` = ?
	`

	var user account.User
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Notifier.TelegramBotToken,
		&user.Notifier.TelegramChatID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt, _ = internship.ParseTimestamp(createdAt)
	return &user, nil
}

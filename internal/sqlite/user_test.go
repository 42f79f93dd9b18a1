package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	user := &account.User{
		ID:           "user1",
		Email:        "a@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		Notifier:     account.Notifier{TelegramBotToken: "tok", TelegramChatID: "42"},
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.Get(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, user.Notifier, got.Notifier)
	require.True(t, user.CreatedAt.Equal(got.CreatedAt))

	got, err = repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "user1", got.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(ctx, &account.User{ID: "u1", Email: "a@example.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &account.User{ID: "u2", Email: "a@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_UpdateNotifier(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	insertUser(t, db, "user1", "a@example.com")

	notifier := account.Notifier{TelegramBotToken: "new", TelegramChatID: "7"}
	require.NoError(t, repo.UpdateNotifier(ctx, "user1", notifier))

	got, err := repo.Get(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, notifier, got.Notifier)

	require.ErrorIs(t, repo.UpdateNotifier(ctx, "ghost", notifier), repository.ErrNotFound)
}

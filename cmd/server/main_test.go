package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/interntrack/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func TestEnsureLocalUser(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations())
	users := sqlite.NewUserRepository(db)

	first, err := ensureLocalUser(ctx, users, " Me@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "me@example.com", first.Email)
	require.Equal(t, "me", first.Username)

	again, err := ensureLocalUser(ctx, users, "me@example.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	writer, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	line := []byte(strings.Repeat("x", 1023) + "\n")
	for i := 0; i < (maxLogSizeBytes/len(line))+10; i++ {
		_, err := writer.Write(line)
		require.NoError(t, err)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.LessOrEqual(t, info.Size(), int64(maxLogSizeBytes))
}

func TestEnsureDBDir(t *testing.T) {
	require.NoError(t, ensureDBDir(":memory:"))
	require.NoError(t, ensureDBDir("file:test?mode=memory"))

	path := filepath.Join(t.TempDir(), "nested", "db.sqlite")
	require.NoError(t, ensureDBDir(path))
	_, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
}

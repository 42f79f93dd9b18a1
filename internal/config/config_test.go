package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INTERNTRACK_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, "interntrack.db", cfg.DB.Path)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
db:
  driver: postgres
  dsn: postgres://localhost/interntrack
auth:
  jwt_secret: `+testSecret+`
  token_ttl: 2h
export:
  bucket: exports
log:
  level: debug
`), 0o644))

	t.Setenv("INTERNTRACK_CONFIG_PATH", path)
	t.Setenv("INTERNTRACK_SERVER_PORT", "9191")
	t.Setenv("INTERNTRACK_METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.DB.Driver)
	require.Equal(t, "postgres://localhost/interntrack", cfg.DB.DSN)
	require.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "exports", cfg.Export.Bucket)
	require.Equal(t, "history", cfg.Export.Prefix)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Metrics.Enabled)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("INTERNTRACK_AUTH_JWT_SECRET", testSecret)
	t.Setenv("INTERNTRACK_SERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.ErrorContains(t, err, "jwt_secret")

	cfg.Auth.JWTSecret = testSecret
	require.NoError(t, cfg.Validate())

	cfg.DB.Driver = "mysql"
	require.ErrorContains(t, cfg.Validate(), "invalid db driver")

	cfg = Default()
	cfg.Transport.Mode = "stdio"
	require.ErrorContains(t, cfg.Validate(), "default_user_email")
	cfg.MCP.DefaultUserEmail = "me@example.com"
	require.NoError(t, cfg.Validate())

	cfg.Export.Bucket = "b"
	cfg.Export.AccessKeyID = "id"
	require.ErrorContains(t, cfg.Validate(), "set together")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/interntrack/internal/auth"
	"github.com/rpggio/interntrack/internal/blob"
	"github.com/rpggio/interntrack/internal/config"
	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/intake"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/domain/tracker"
	"github.com/rpggio/interntrack/internal/mcp"
	"github.com/rpggio/interntrack/internal/metrics"
	"github.com/rpggio/interntrack/internal/notify"
	"github.com/rpggio/interntrack/internal/postgres"
	"github.com/rpggio/interntrack/internal/repository"
	"github.com/rpggio/interntrack/internal/sqlite"
	"github.com/rpggio/interntrack/internal/transport"
)

const version = "0.1.0"

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("INTERNTRACK_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx := context.Background()
	stores, closeStores, err := openStores(ctx, cfg.DB)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStores()

	observer := metrics.New()
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	sessions := session.NewManager(stores.internships, observer, logger)

	activitySvc := activity.NewService(stores.activity, logger)
	accountSvc := account.NewService(stores.users, issuer, sessions, logger)
	trackerSvc := tracker.NewService(stores.internships, activitySvc, observer, logger)
	telegram := notify.NewTelegram(cfg.Notify.TelegramAPIBase, cfg.Notify.Timeout)
	intakeSvc := intake.NewService(stores.internships, accountSvc, telegram, activitySvc, observer, logger)

	var uploader history.Uploader
	if cfg.Export.Bucket != "" {
		store, err := blob.NewS3(ctx, blob.Config{
			Bucket:          cfg.Export.Bucket,
			Region:          cfg.Export.Region,
			Endpoint:        cfg.Export.Endpoint,
			PathStyle:       cfg.Export.PathStyle,
			Prefix:          cfg.Export.Prefix,
			AccessKeyID:     cfg.Export.AccessKeyID,
			SecretAccessKey: cfg.Export.SecretAccessKey,
			LinkExpiry:      cfg.Export.LinkExpiry,
		})
		if err != nil {
			logger.Error("failed to configure history export", "error", err)
			os.Exit(1)
		}
		uploader = store
	}
	historySvc := history.NewService(uploader, logger)

	mcpCfg := mcp.Config{
		Services:      mcp.Services{Tracker: trackerSvc, History: historySvc},
		Tokens:        issuer,
		Sessions:      sessions,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	}

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		user, err := ensureLocalUser(ctx, stores.users, cfg.MCP.DefaultUserEmail)
		if err != nil {
			logger.Error("failed to prepare local user", "error", err)
			os.Exit(1)
		}
		sess, err := sessions.Open(user.ID)
		if err != nil {
			logger.Error("failed to open local session", "error", err)
			os.Exit(1)
		}
		mcpCfg.DefaultSession = sess
		runStdioMode(logger, mcp.NewServer(mcpCfg))
		return
	}

	mcpServer := mcp.NewServer(mcpCfg)
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	opts := transport.Options{
		Auth:   transport.AuthMiddleware(issuer, sessions),
		MCP:    mcpHandler,
		Logger: logger,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = observer.Handler()
	}
	router := transport.NewServer(transport.Services{
		Accounts: accountSvc,
		Tracker:  trackerSvc,
		Intake:   intakeSvc,
		History:  historySvc,
		Activity: activitySvc,
	}, opts)

	stopExpiry := expireIdleSessions(logger, sessions, cfg.Session.IdleTimeout)
	defer stopExpiry()

	runHTTPMode(logger, router, cfg)
}

// internshipStore is implemented by both database backends.
type internshipStore interface {
	internship.Repository
}

type stores struct {
	internships internshipStore
	users       account.UserRepository
	activity    activity.Repository
}

func openStores(ctx context.Context, cfg config.DBConfig) (stores, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return stores{}, nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return stores{}, nil, fmt.Errorf("run migrations: %w", err)
		}
		return stores{
			internships: postgres.NewInternshipRepository(pool),
			users:       postgres.NewUserRepository(pool),
			activity:    postgres.NewActivityRepository(pool),
		}, pool.Close, nil
	default:
		if err := ensureDBDir(cfg.Path); err != nil {
			return stores{}, nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return stores{}, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return stores{}, nil, fmt.Errorf("run migrations: %w", err)
		}
		return stores{
			internships: sqlite.NewInternshipRepository(db),
			users:       sqlite.NewUserRepository(db),
			activity:    sqlite.NewActivityRepository(db),
		}, func() { _ = db.Close() }, nil
	}
}

// ensureLocalUser returns the stdio user, creating it on first start. The
// account has a random password: it is only reachable through stdio.
func ensureLocalUser(ctx context.Context, users account.UserRepository, email string) (*account.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := account.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	user = &account.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.Split(email, "@")[0],
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "local user")

	stdio := &sdkmcp.StdioTransport{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, stdio); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, cfg config.Config) {
	addr := cfg.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "db", cfg.DB.Driver, "export", cfg.Export.Bucket != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// expireIdleSessions closes idle sessions until the returned stop is called.
func expireIdleSessions(logger *slog.Logger, sessions *session.Manager, maxIdle time.Duration) (stop func()) {
	if maxIdle <= 0 {
		return func() {}
	}
	interval := maxIdle / 10
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := sessions.ExpireIdle(maxIdle); n > 0 {
					logger.Info("expired idle sessions", "count", n)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}
	if size <= keepLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}


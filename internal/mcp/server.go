package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/domain/tracker"
)

// TrackerService defines the status actions needed by MCP.
type TrackerService interface {
	Apply(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)
	Reject(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)
	Delete(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)
}

// HistoryService defines history operations needed by MCP.
type HistoryService interface {
	List(ctx context.Context, sess *session.Session) ([]history.Row, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Tracker TrackerService
	History HistoryService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Tokens   TokenParser
	Sessions SessionResolver
	// DefaultSession serves every call in stdio mode, where there is no
	// bearer token.
	DefaultSession *session.Session
	TransportMode  string // "stdio" or "http"
	Version        string
	Logger         *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "interntrack",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Later middleware runs first, so traffic logging sees the session.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))
	// Stdio is a local, single-user transport.
	if cfg.TransportMode == "stdio" {
		server.AddReceivingMiddleware(defaultSessionMiddleware(cfg.DefaultSession))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Tokens, cfg.Sessions))
	}

	registerTools(server, cfg.Services)

	return server
}

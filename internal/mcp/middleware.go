package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/interntrack/internal/auth"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
)

type contextKey int

const sessionKey contextKey = iota

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// SessionResolver returns the live session named by a token.
type SessionResolver interface {
	Ensure(id, userID string) (*session.Session, error)
}

// getSession extracts the caller's session from context.
func getSession(ctx context.Context) (*session.Session, error) {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	if sess == nil {
		return nil, internship.ErrNotAuthenticated
	}
	return sess, nil
}

func getUserID(ctx context.Context) string {
	if sess, err := getSession(ctx); err == nil {
		return sess.UserID
	}
	return ""
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(tokens TokenParser, sessions SessionResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			header := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			sess, err := sessions.Ensure(claims.SessionID, claims.UserID)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}

			ctx = context.WithValue(ctx, sessionKey, sess)
			return next(ctx, method, req)
		}
	}
}

// defaultSessionMiddleware injects a fixed session when there is no token.
func defaultSessionMiddleware(sess *session.Session) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if sess != nil {
				ctx = context.WithValue(ctx, sessionKey, sess)
			}
			return next(ctx, method, req)
		}
	}
}

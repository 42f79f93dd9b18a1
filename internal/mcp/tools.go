package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/domain/tracker"
)

type actionFunc func(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_internships",
		Description: "List your internships, new first, optionally filtered by status",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListInternshipsParams) (*sdkmcp.CallToolResult, ListInternshipsResponse, error) {
		if !internship.ValidFilter(in.Status) {
			return nil, ListInternshipsResponse{}, MapError(fmt.Errorf("%w: unknown status %q", internship.ErrInvalidInput, in.Status), "")
		}
		return listInternships(ctx, in.Status, false)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "refresh_internships",
		Description: "Reload your internships from the store, discarding the session snapshot",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, ListInternshipsResponse, error) {
		return listInternships(ctx, internship.FilterAll, true)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Count your internships by status",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, StatsResponse, error) {
		records, err := load(ctx, false)
		if err != nil {
			return nil, StatsResponse{}, MapError(err, "")
		}
		return nil, StatsResponse{Stats: internship.Summarize(records)}, nil
	})

	addActionTool(server, "apply_internship", "Mark a new internship as applied", svc.Tracker.Apply)
	addActionTool(server, "reject_internship", "Mark a new or applied internship as rejected", svc.Tracker.Reject)
	addActionTool(server, "delete_internship", "Reject an internship and remove it from your list", svc.Tracker.Delete)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_history",
		Description: "List your application history: date, title, company, action taken and link",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, HistoryResponse, error) {
		sess, err := getSession(ctx)
		if err != nil {
			return nil, HistoryResponse{}, MapError(err, "")
		}
		rows, err := svc.History.List(ctx, sess)
		if err != nil {
			return nil, HistoryResponse{}, MapError(err, "")
		}
		if rows == nil {
			rows = []history.Row{}
		}
		return nil, HistoryResponse{History: rows}, nil
	})
}

// addActionTool registers a status action. Failed actions still return the
// result, marked as an error, so the caller sees the reason.
func addActionTool(server *sdkmcp.Server, name, description string, act actionFunc) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in InternshipIDParams) (*sdkmcp.CallToolResult, ActionResponse, error) {
		sess, err := getSession(ctx)
		if err != nil {
			return nil, ActionResponse{}, MapError(err, "")
		}
		if in.ID <= 0 {
			return nil, ActionResponse{}, MapError(fmt.Errorf("%w: id must be positive", internship.ErrInvalidInput), "")
		}

		res, err := act(ctx, sess, in.ID)
		if err != nil {
			apiErr := MapError(err, res.Reason)
			return &sdkmcp.CallToolResult{
				IsError: true,
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: apiErr.Error()}},
			}, ActionResponse{Result: res, Error: apiErr}, nil
		}
		return nil, ActionResponse{Result: res}, nil
	})
}

func listInternships(ctx context.Context, filter string, refresh bool) (*sdkmcp.CallToolResult, ListInternshipsResponse, error) {
	records, err := load(ctx, refresh)
	if err != nil {
		return nil, ListInternshipsResponse{}, MapError(err, "")
	}
	if strings.TrimSpace(filter) == "" {
		filter = internship.FilterAll
	}
	return nil, ListInternshipsResponse{
		Filter:      strings.ToLower(strings.TrimSpace(filter)),
		Internships: internship.View(records, filter),
		Stats:       internship.Summarize(records),
	}, nil
}

func load(ctx context.Context, refresh bool) ([]internship.Internship, error) {
	sess, err := getSession(ctx)
	if err != nil {
		return nil, err
	}
	release := sess.Acquire()
	defer release()
	if refresh {
		return sess.Cache().ForceRefresh(ctx, sess.UserID)
	}
	return sess.Cache().Get(ctx, sess.UserID)
}

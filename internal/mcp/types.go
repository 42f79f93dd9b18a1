package mcp

import (
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/tracker"
)

// ListInternshipsParams filters list_internships.
type ListInternshipsParams struct {
	Status string `json:"status,omitempty" jsonschema:"status to show: all, new, applied or rejected (default all)"`
}

// InternshipIDParams names one internship.
type InternshipIDParams struct {
	ID int64 `json:"id" jsonschema:"internship id from list_internships"`
}

// NoParams is the input of tools without arguments.
type NoParams struct{}

// ListInternshipsResponse is the output of list_internships and refresh_internships.
type ListInternshipsResponse struct {
	Filter      string                  `json:"filter"`
	Internships []internship.Internship `json:"internships"`
	Stats       internship.Stats        `json:"stats"`
}

// StatsResponse is the output of get_stats.
type StatsResponse struct {
	Stats internship.Stats `json:"stats"`
}

// ActionResponse is the output of the status actions.
type ActionResponse struct {
	Result tracker.Result `json:"result"`
	Error  *APIError      `json:"error,omitempty"`
}

// HistoryResponse is the output of get_history.
type HistoryResponse struct {
	History []history.Row `json:"history"`
}

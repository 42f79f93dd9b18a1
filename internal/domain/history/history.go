package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/rpggio/interntrack/internal/blob"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
)

// ErrExportDisabled is returned when no blob store is configured.
var ErrExportDisabled = errors.New("history export is not configured")

const dateLayout = "2006-01-02 15:04"

// Row is one line of a user's application history.
type Row struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	ActionTaken string `json:"action_taken"`
	Link        string `json:"link"`
}

var csvHeader = []string{"Date", "Job Title", "Company", "Action Taken", "Original Link"}

// Rows orders records for display and flattens them into history rows.
// Unparseable dates are left blank.
func Rows(records []internship.Internship) []Row {
	ordered := internship.View(records, internship.FilterAll)
	rows := make([]Row, 0, len(ordered))
	for _, rec := range ordered {
		date := ""
		if t, ok := internship.ParseTimestamp(rec.CreatedAt); ok {
			date = t.Format(dateLayout)
		}
		rows = append(rows, Row{
			ID:          rec.ID,
			Date:        date,
			JobTitle:    rec.JobTitle,
			Company:     rec.CompanyName,
			ActionTaken: rec.Status.Title(),
			Link:        rec.ApplicationLink,
		})
	}
	return rows
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Date, r.JobTitle, r.Company, r.ActionTaken, r.Link}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Uploader stores an export and returns where it can be downloaded.
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (*blob.Object, error)
}

// Export is the result of uploading a user's history.
type Export struct {
	Rows   int          `json:"rows"`
	Object *blob.Object `json:"object"`
}

// Service serves a session's history from its listing cache.
type Service struct {
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a history service. uploader may be nil, which disables export.
func NewService(uploader Uploader, logger *slog.Logger) *Service {
	return &Service{uploader: uploader, logger: logger, now: time.Now}
}

// List returns the session user's history rows.
func (s *Service) List(ctx context.Context, sess *session.Session) ([]Row, error) {
	if sess == nil {
		return nil, internship.ErrNotAuthenticated
	}
	records, err := sess.Cache().Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return Rows(records), nil
}

// Export uploads the session user's history as CSV.
func (s *Service) Export(ctx context.Context, sess *session.Session) (*Export, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}
	rows, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	key := fmt.Sprintf("%s/history-%s.csv", sess.UserID, strconv.FormatInt(s.now().UTC().Unix(), 10))
	obj, err := s.uploader.Put(ctx, key, buf.Bytes(), "text/csv")
	if err != nil {
		return nil, fmt.Errorf("uploading history: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("history exported", "user_id", sess.UserID, "rows", len(rows), "key", obj.Key)
	}
	return &Export{Rows: len(rows), Object: obj}, nil
}

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/intake"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/domain/tracker"
)

var errBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 20

// AccountService defines account operations needed by the API.
type AccountService interface {
	SignUp(ctx context.Context, req account.SignUpRequest) (*account.User, error)
	SignIn(ctx context.Context, email, password string) (*account.SignInResult, error)
	SignOut(sessionID string) error
	Profile(ctx context.Context, userID string) (*account.Profile, error)
	UpdateNotifier(ctx context.Context, userID string, notifier account.Notifier) error
}

// TrackerService defines the status actions needed by the API.
type TrackerService interface {
	Apply(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)
	Reject(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)
	Delete(ctx context.Context, sess *session.Session, id int64) (tracker.Result, error)
}

// IntakeService accepts scraped postings.
type IntakeService interface {
	Ingest(ctx context.Context, sess *session.Session, postings []intake.Posting) (intake.Report, error)
}

// HistoryService lists and exports application history.
type HistoryService interface {
	List(ctx context.Context, sess *session.Session) ([]history.Row, error)
	Export(ctx context.Context, sess *session.Session) (*history.Export, error)
}

// ActivityService defines activity operations needed by the API.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by the API.
type Services struct {
	Accounts AccountService
	Tracker  TrackerService
	Intake   IntakeService
	History  HistoryService
	Activity ActivityService
}

// Options configures the router. Handlers left nil are not mounted.
type Options struct {
	Auth    func(http.Handler) http.Handler
	MCP     http.Handler
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	logger   *slog.Logger
}

// ListResponse is the body of GET /internships.
type ListResponse struct {
	Filter      string                  `json:"filter"`
	Internships []internship.Internship `json:"internships"`
	Stats       internship.Stats        `json:"stats"`
}

// ActionResponse is the body of a successful status action.
type ActionResponse struct {
	Result      tracker.Result          `json:"result"`
	Internships []internship.Internship `json:"internships,omitempty"`
	Stats       *internship.Stats       `json:"stats,omitempty"`
}

// NewServer creates an HTTP server router with middleware.
func NewServer(services Services, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}

	srv := &Server{services: services, logger: opts.Logger}

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	r.Post("/auth/signup", srv.handleSignUp)
	r.Post("/auth/signin", srv.handleSignIn)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		r.Post("/auth/signout", srv.handleSignOut)
		r.Get("/profile", srv.handleProfile)
		r.Put("/profile/notifier", srv.handleUpdateNotifier)

		r.Route("/internships", func(r chi.Router) {
			r.Get("/", srv.handleListInternships)
			r.Post("/", srv.handleIngest)
			r.Get("/stats", srv.handleStats)
			r.Post("/{id}/apply", srv.handleAction(internship.ActionApply))
			r.Post("/{id}/reject", srv.handleAction(internship.ActionReject))
			r.Delete("/{id}", srv.handleAction(internship.ActionDelete))
		})

		r.Get("/history", srv.handleHistory)
		r.Post("/history/export", srv.handleExport)
		r.Get("/activity", srv.handleActivity)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req account.SignUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	user, err := s.services.Accounts.SignUp(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	res, err := s.services.Accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if err := s.services.Accounts.SignOut(sess.ID); err != nil {
		s.fail(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	profile, err := s.services.Accounts.Profile(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateNotifier(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	var notifier account.Notifier
	if err := decodeBody(r, &notifier); err != nil {
		writeError(w, err, "")
		return
	}
	if err := s.services.Accounts.UpdateNotifier(r.Context(), sess.UserID, notifier); err != nil {
		s.fail(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInternships(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	filter := r.URL.Query().Get("status")
	if !internship.ValidFilter(filter) {
		writeError(w, fmt.Errorf("%w: unknown status filter %q", internship.ErrInvalidInput, filter), "")
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	records, err := s.load(r.Context(), sess, refresh)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if filter == "" {
		filter = internship.FilterAll
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Filter:      strings.ToLower(strings.TrimSpace(filter)),
		Internships: internship.View(records, filter),
		Stats:       internship.Summarize(records),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	records, err := s.load(r.Context(), sess, false)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, internship.Summarize(records))
}

// load reads through the session cache. The session lock keeps reads from
// interleaving with an action on the same session.
func (s *Server) load(ctx context.Context, sess *session.Session, refresh bool) ([]internship.Internship, error) {
	release := sess.Acquire()
	defer release()
	if refresh {
		return sess.Cache().ForceRefresh(ctx, sess.UserID)
	}
	return sess.Cache().Get(ctx, sess.UserID)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	var postings []intake.Posting
	if err := decodeBody(r, &postings); err != nil {
		writeError(w, err, "")
		return
	}
	report, err := s.services.Intake.Ingest(r.Context(), sess, postings)
	if err != nil {
		s.fail(w, r, err, fmt.Sprintf("%d of %d postings were added before the failure", len(report.Created), report.Received))
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleAction(action internship.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := requireSession(r)
		if err != nil {
			writeError(w, err, "")
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, fmt.Errorf("%w: invalid internship id", internship.ErrInvalidInput), "")
			return
		}

		var res tracker.Result
		switch action {
		case internship.ActionApply:
			res, err = s.services.Tracker.Apply(r.Context(), sess, id)
		case internship.ActionReject:
			res, err = s.services.Tracker.Reject(r.Context(), sess, id)
		default:
			res, err = s.services.Tracker.Delete(r.Context(), sess, id)
		}
		if err != nil {
			s.fail(w, r, err, res.Reason)
			return
		}

		resp := ActionResponse{Result: res}
		if res.Invalidated {
			// Redraw from the repopulated cache so the client sees the new state.
			if records, err := s.load(r.Context(), sess, false); err == nil {
				stats := internship.Summarize(records)
				resp.Internships = internship.View(records, internship.FilterAll)
				resp.Stats = &stats
			} else if s.logger != nil {
				s.logger.Warn("reload after action failed", "action", action, "id", id, "error", err)
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	rows, err := s.services.History.List(r.Context(), sess)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if rows == nil {
		rows = []history.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": rows})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	export, err := s.services.History.Export(r.Context(), sess)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, export)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	q := r.URL.Query()
	opts := activity.ListActivityOptions{}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit", errBadRequest), "")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: invalid offset", errBadRequest), "")
			return
		}
		opts.Offset = n
	}
	if v := q.Get("internship_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid internship_id", errBadRequest), "")
			return
		}
		opts.InternshipID = &id
	}
	if v := q.Get("type"); v != "" {
		typ := activity.ActivityType(v)
		opts.ActivityType = &typ
	}

	entries, err := s.services.Activity.GetRecentActivity(r.Context(), sess.UserID, opts)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, reason string) {
	if status, _ := classify(err); status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, err, reason)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/interntrack/internal/auth"
	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/history"
	"github.com/rpggio/interntrack/internal/domain/intake"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/domain/tracker"
	"github.com/rpggio/interntrack/internal/mcp"
	"github.com/rpggio/interntrack/internal/metrics"
	"github.com/rpggio/interntrack/internal/notify"
	"github.com/rpggio/interntrack/internal/sqlite"
	"github.com/rpggio/interntrack/internal/transport"
	"github.com/stretchr/testify/require"
)

// JWTSecret signs the test server's tokens.
const JWTSecret = "test-secret-0123456789abcdef012345"

// TestServer runs the full HTTP stack on an in-memory database. Telegram
// messages are captured instead of sent.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Sessions *session.Manager
	Metrics  *metrics.Metrics

	mu       sync.Mutex
	messages []string
}

func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{DB: db, Metrics: metrics.New()}

	telegram := httptest.NewServer(http.HandlerFunc(ts.captureTelegram))

	internshipRepo := sqlite.NewInternshipRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	issuer := auth.NewIssuer(JWTSecret, time.Hour)
	ts.Sessions = session.NewManager(internshipRepo, ts.Metrics, nil)
	activitySvc := activity.NewService(activityRepo, nil)
	accountSvc := account.NewService(userRepo, issuer, ts.Sessions, nil)
	trackerSvc := tracker.NewService(internshipRepo, activitySvc, ts.Metrics, nil)
	intakeSvc := intake.NewService(internshipRepo, accountSvc, notify.NewTelegram(telegram.URL, 5*time.Second), activitySvc, ts.Metrics, nil)
	historySvc := history.NewService(nil, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Tracker: trackerSvc, History: historySvc},
		Tokens:   issuer,
		Sessions: ts.Sessions,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: false, SessionTimeout: time.Minute},
	)

	router := transport.NewServer(transport.Services{
		Accounts: accountSvc,
		Tracker:  trackerSvc,
		Intake:   intakeSvc,
		History:  historySvc,
		Activity: activitySvc,
	}, transport.Options{
		Auth:    transport.AuthMiddleware(issuer, ts.Sessions),
		MCP:     mcpHandler,
		Metrics: ts.Metrics.Handler(),
	})
	ts.Server = httptest.NewServer(router)

	t.Cleanup(func() {
		ts.Server.Close()
		telegram.Close()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) captureTelegram(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	ts.mu.Lock()
	ts.messages = append(ts.messages, body.Text)
	ts.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// Messages returns the Telegram messages sent so far.
func (ts *TestServer) Messages() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.messages...)
}

// Do sends a JSON request, with the bearer token when one is given, and
// decodes the response into out when out is non-nil.
func (ts *TestServer) Do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// SignUpAndIn registers a user with a notifier and returns a fresh sign-in.
func (ts *TestServer) SignUpAndIn(t *testing.T, email string) account.SignInResult {
	t.Helper()

	status := ts.Do(t, http.MethodPost, "/auth/signup", "", account.SignUpRequest{
		Email:    email,
		Password: "correct-horse",
		Username: strings.Split(email, "@")[0],
		Notifier: account.Notifier{TelegramBotToken: "123:abc", TelegramChatID: "42"},
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var res account.SignInResult
	status = ts.Do(t, http.MethodPost, "/auth/signin", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	}, &res)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.Token)
	return res
}

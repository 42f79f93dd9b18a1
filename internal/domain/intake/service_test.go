package intake_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/intake"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	notifier account.Notifier
	err      error
}

func (f fakeSettings) Notifier(ctx context.Context, userID string) (account.Notifier, error) {
	return f.notifier, f.err
}

type fakeSender struct {
	mu       sync.Mutex
	messages []string
	failOn   int
}

func (f *fakeSender) Send(ctx context.Context, botToken, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	if f.failOn > 0 && len(f.messages) == f.failOn {
		return errors.New("telegram unavailable")
	}
	return nil
}

func newSession(t *testing.T, repo *mocks.InternshipRepository) *session.Session {
	t.Helper()
	sess, err := session.NewManager(repo, nil, nil).Open("user1")
	require.NoError(t, err)
	return sess
}

func expectCreates(ctx context.Context, repo *mocks.InternshipRepository) {
	var next int64
	repo.On("Create", ctx, "user1", mock.AnythingOfType("*internship.Internship")).
		Run(func(args mock.Arguments) {
			next++
			args.Get(2).(*internship.Internship).ID = next
		}).
		Return(nil)
}

var configured = fakeSettings{notifier: account.Notifier{TelegramBotToken: "t", TelegramChatID: "c"}}

func TestIngest_DedupesAndNotifies(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InternshipRepository{}
	repo.On("ListByUser", ctx, "user1").Return([]internship.Internship{}, nil)
	repo.On("ListLinks", ctx, "user1").Return([]string{"https://jobs.example/1"}, nil)
	expectCreates(ctx, repo)

	sess := newSession(t, repo)
	_, err := sess.Cache().Get(ctx, "user1")
	require.NoError(t, err)

	sender := &fakeSender{}
	svc := intake.NewService(repo, configured, sender, nil, nil, nil)

	report, err := svc.Ingest(ctx, sess, []intake.Posting{
		{JobTitle: "Backend Intern", CompanyName: "Acme", ApplicationLink: "https://jobs.example/1/"},
		{JobTitle: "Data Intern", CompanyName: "Globex", ApplicationLink: "https://jobs.example/2", JobDescription: "Great role. Posted 2 days ago"},
		{JobTitle: "Data Intern", CompanyName: "Globex", ApplicationLink: "https://jobs.example/2"},
		{JobTitle: "", CompanyName: "Nobody"},
	})
	require.NoError(t, err)
	require.Equal(t, 4, report.Received)
	require.Equal(t, 2, report.Duplicates)
	require.Equal(t, 1, report.Invalid)
	require.Len(t, report.Created, 1)
	require.Equal(t, internship.StatusNew, report.Created[0].Status)
	require.Equal(t, "user1", report.Created[0].UserID)
	require.NotEmpty(t, report.Created[0].CreatedAt)
	require.True(t, report.Invalidated)
	require.False(t, sess.Cache().Loaded())

	require.Equal(t, 2, report.Notified)
	require.Len(t, sender.messages, 2)
	require.Contains(t, sender.messages[0], "New internship: Data Intern")
	require.Contains(t, sender.messages[0], "Great role.")
	require.NotContains(t, sender.messages[0], "Posted")
	require.True(t, strings.HasPrefix(sender.messages[1], "Found 1 new internships!"))
	require.Contains(t, sender.messages[1], "1. Data Intern at Globex")
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestIngest_NothingNewKeepsCache(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InternshipRepository{}
	repo.On("ListByUser", ctx, "user1").Return([]internship.Internship{}, nil)
	repo.On("ListLinks", ctx, "user1").Return([]string{"https://jobs.example/1"}, nil)

	sess := newSession(t, repo)
	_, err := sess.Cache().Get(ctx, "user1")
	require.NoError(t, err)

	sender := &fakeSender{}
	report, err := intake.NewService(repo, configured, sender, nil, nil, nil).
		Ingest(ctx, sess, []intake.Posting{{JobTitle: "A", CompanyName: "B", ApplicationLink: "https://jobs.example/1"}})
	require.NoError(t, err)
	require.Empty(t, report.Created)
	require.False(t, report.Invalidated)
	require.True(t, sess.Cache().Loaded())
	require.Empty(t, sender.messages)
}

func TestIngest_NotificationFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InternshipRepository{}
	repo.On("ListLinks", ctx, "user1").Return(nil, nil)
	expectCreates(ctx, repo)

	sender := &fakeSender{failOn: 1}
	report, err := intake.NewService(repo, configured, sender, nil, nil, nil).
		Ingest(ctx, newSession(t, repo), []intake.Posting{
			{JobTitle: "A", CompanyName: "B"},
			{JobTitle: "C", CompanyName: "D"},
		})
	require.NoError(t, err)
	require.Len(t, report.Created, 2)
	require.Len(t, sender.messages, 3)
	require.Equal(t, 2, report.Notified)
}

func TestIngest_SkipsUnconfiguredNotifier(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InternshipRepository{}
	repo.On("ListLinks", ctx, "user1").Return(nil, nil)
	expectCreates(ctx, repo)

	sender := &fakeSender{}
	report, err := intake.NewService(repo, fakeSettings{}, sender, nil, nil, nil).
		Ingest(ctx, newSession(t, repo), []intake.Posting{{JobTitle: "A", CompanyName: "B"}})
	require.NoError(t, err)
	require.Len(t, report.Created, 1)
	require.Zero(t, report.Notified)
	require.Empty(t, sender.messages)
}

func TestIngest_CreateFailureKeepsEarlierRecords(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InternshipRepository{}
	repo.On("ListLinks", ctx, "user1").Return(nil, nil)
	repo.On("Create", ctx, "user1", mock.MatchedBy(func(rec *internship.Internship) bool { return rec.JobTitle == "A" })).Return(nil).Once()
	repo.On("Create", ctx, "user1", mock.MatchedBy(func(rec *internship.Internship) bool { return rec.JobTitle == "C" })).Return(errors.New("disk full")).Once()

	sess := newSession(t, repo)
	report, err := intake.NewService(repo, nil, nil, nil, nil, nil).
		Ingest(ctx, sess, []intake.Posting{
			{JobTitle: "A", CompanyName: "B"},
			{JobTitle: "C", CompanyName: "D"},
			{JobTitle: "E", CompanyName: "F"},
		})
	require.ErrorIs(t, err, internship.ErrStoreFailure)
	require.Len(t, report.Created, 1)
	require.True(t, report.Invalidated)
	repo.AssertExpectations(t)
}

func TestIngest_RequiresSession(t *testing.T) {
	_, err := intake.NewService(&mocks.InternshipRepository{}, nil, nil, nil, nil, nil).
		Ingest(context.Background(), nil, nil)
	require.ErrorIs(t, err, internship.ErrNotAuthenticated)
}

func TestIngest_LinkListingFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InternshipRepository{}
	repo.On("ListLinks", ctx, "user1").Return(nil, errors.New("boom"))

	_, err := intake.NewService(repo, nil, nil, nil, nil, nil).
		Ingest(ctx, newSession(t, repo), []intake.Posting{{JobTitle: "A", CompanyName: "B"}})
	require.ErrorIs(t, err, internship.ErrStoreFailure)
	repo.AssertNumberOfCalls(t, "Create", 0)
}

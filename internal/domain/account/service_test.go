package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/interntrack/internal/auth"
	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/session"
	"github.com/rpggio/interntrack/internal/repository"
	"github.com/rpggio/interntrack/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingIssuer struct{}

func (failingIssuer) Issue(string, string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signing failed")
}

func validSignUp() account.SignUpRequest {
	return account.SignUpRequest{
		Email:    " Ada@Example.com ",
		Password: "correct-horse",
		Username: "ada",
		Notifier: account.Notifier{TelegramBotToken: "123:abc", TelegramChatID: "42"},
	}
}

func newService(users *mocks.UserRepository) (*account.Service, *session.Manager) {
	sessions := session.NewManager(&mocks.InternshipRepository{}, nil, nil)
	issuer := auth.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	return account.NewService(users, issuer, sessions, nil), sessions
}

func TestSignUp(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *account.User) bool {
		return u.Email == "ada@example.com" &&
			u.Username == "ada" &&
			u.ID != "" &&
			account.ComparePassword(u.PasswordHash, "correct-horse") == nil
	})).Return(nil).Once()
	svc, _ := newService(users)

	user, err := svc.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.True(t, user.Notifier.Configured())
	users.AssertExpectations(t)
}

func TestSignUp_Validation(t *testing.T) {
	cases := map[string]func(*account.SignUpRequest){
		"missing email":    func(r *account.SignUpRequest) { r.Email = "" },
		"malformed email":  func(r *account.SignUpRequest) { r.Email = "not-an-email" },
		"short password":   func(r *account.SignUpRequest) { r.Password = "short" },
		"missing username": func(r *account.SignUpRequest) { r.Username = " " },
		"missing bot":      func(r *account.SignUpRequest) { r.Notifier.TelegramBotToken = "" },
		"missing chat":     func(r *account.SignUpRequest) { r.Notifier.TelegramChatID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			users := &mocks.UserRepository{}
			svc, _ := newService(users)
			req := validSignUp()
			mutate(&req)

			_, err := svc.SignUp(context.Background(), req)
			require.ErrorIs(t, err, account.ErrInvalidInput)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSignUp_EmailTaken(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
	svc, _ := newService(users)

	_, err := svc.SignUp(context.Background(), validSignUp())
	require.ErrorIs(t, err, account.ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	hash, err := account.HashPassword("correct-horse")
	require.NoError(t, err)
	users := &mocks.UserRepository{}
	users.On("GetByEmail", mock.Anything, "ada@example.com").
		Return(&account.User{ID: "user1", Email: "ada@example.com", Username: "ada", PasswordHash: hash}, nil)
	svc, sessions := newService(users)

	res, err := svc.SignIn(context.Background(), "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "user1", res.UserID)
	require.Equal(t, "ada", res.Username)
	require.NotEmpty(t, res.Token)

	sess, err := sessions.Get(res.SessionID)
	require.NoError(t, err)
	require.Equal(t, "user1", sess.UserID)
	require.False(t, sess.Cache().Loaded())

	claims, err := auth.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour).Parse(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.SessionID, claims.SessionID)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	hash, err := account.HashPassword("correct-horse")
	require.NoError(t, err)
	users := &mocks.UserRepository{}
	users.On("GetByEmail", mock.Anything, "ada@example.com").
		Return(&account.User{ID: "user1", PasswordHash: hash}, nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
	svc, sessions := newService(users)

	_, err = svc.SignIn(context.Background(), "ada@example.com", "wrong-horse")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)
	_, err = svc.SignIn(context.Background(), "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)
	_, err = svc.SignIn(context.Background(), "", "")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)

	require.Empty(t, sessions.ListForUser("user1"))
}

func TestSignIn_TokenFailureClosesSession(t *testing.T) {
	hash, err := account.HashPassword("correct-horse")
	require.NoError(t, err)
	users := &mocks.UserRepository{}
	users.On("GetByEmail", mock.Anything, "ada@example.com").
		Return(&account.User{ID: "user1", PasswordHash: hash}, nil)
	sessions := session.NewManager(&mocks.InternshipRepository{}, nil, nil)
	svc := account.NewService(users, failingIssuer{}, sessions, nil)

	_, err = svc.SignIn(context.Background(), "ada@example.com", "correct-horse")
	require.Error(t, err)
	require.Empty(t, sessions.ListForUser("user1"))
}

func TestSignOut(t *testing.T) {
	svc, sessions := newService(&mocks.UserRepository{})
	sess, err := sessions.Open("user1")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(sess.ID))
	_, err = sessions.Get(sess.ID)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	require.ErrorIs(t, svc.SignOut(sess.ID), session.ErrSessionNotFound)
}

func TestProfileAndNotifier(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Get", mock.Anything, "user1").Return(&account.User{
		ID: "user1", Email: "ada@example.com", Username: "ada",
		Notifier: account.Notifier{TelegramBotToken: "123:abc", TelegramChatID: "42"},
	}, nil)
	users.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
	users.On("UpdateNotifier", mock.Anything, "user1", account.Notifier{TelegramBotToken: "9:z", TelegramChatID: "7"}).Return(nil).Once()
	svc, _ := newService(users)
	ctx := context.Background()

	profile, err := svc.Profile(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "ada", profile.Username)
	require.True(t, profile.NotifierConfigured)

	_, err = svc.Profile(ctx, "ghost")
	require.ErrorIs(t, err, account.ErrUserNotFound)

	n, err := svc.Notifier(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "42", n.TelegramChatID)

	require.NoError(t, svc.UpdateNotifier(ctx, "user1", account.Notifier{TelegramBotToken: " 9:z ", TelegramChatID: "7"}))
	require.ErrorIs(t, svc.UpdateNotifier(ctx, "user1", account.Notifier{}), account.ErrInvalidInput)
	users.AssertExpectations(t)
}

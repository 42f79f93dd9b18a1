package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/interntrack/internal/repository"
)

// Service handles registration, sign-in and profile settings.
type Service struct {
	users    UserRepository
	tokens   TokenIssuer
	sessions Sessions
	logger   *slog.Logger
}

// NewService creates a new account service.
func NewService(users UserRepository, tokens TokenIssuer, sessions Sessions, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, sessions: sessions, logger: logger}
}

// SignUp registers a user. All fields, including the notifier, are required.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	if err := ValidateSignUp(req); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Notifier: Notifier{
			TelegramBotToken: strings.TrimSpace(req.Notifier.TelegramBotToken),
			TelegramChatID:   strings.TrimSpace(req.Notifier.TelegramChatID),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user registered", "user_id", user.ID)
	}
	return user, nil
}

// SignIn checks credentials and opens a new session with an unloaded cache.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Open(user.ID)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	token, expires, err := s.tokens.Issue(user.ID, sess.ID)
	if err != nil {
		_ = s.sessions.Close(sess.ID)
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user signed in", "user_id", user.ID, "session_id", sess.ID)
	}
	return &SignInResult{
		Token:     token,
		ExpiresAt: expires,
		UserID:    user.ID,
		SessionID: sess.ID,
		Username:  user.Username,
	}, nil
}

// SignOut closes the session and drops its cache.
func (s *Service) SignOut(sessionID string) error {
	if err := s.sessions.Close(sessionID); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

// Profile returns the public view of a user.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:             user.ID,
		Email:              user.Email,
		Username:           user.Username,
		NotifierConfigured: user.Notifier.Configured(),
	}, nil
}

// Notifier returns the user's Telegram settings.
func (s *Service) Notifier(ctx context.Context, userID string) (Notifier, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return Notifier{}, err
	}
	return user.Notifier, nil
}

// UpdateNotifier replaces the user's Telegram settings.
func (s *Service) UpdateNotifier(ctx context.Context, userID string, notifier Notifier) error {
	if userID == "" {
		return ErrInvalidInput
	}
	if err := ValidateNotifier(notifier); err != nil {
		return err
	}
	notifier.TelegramBotToken = strings.TrimSpace(notifier.TelegramBotToken)
	notifier.TelegramChatID = strings.TrimSpace(notifier.TelegramChatID)

	if err := s.users.UpdateNotifier(ctx, userID, notifier); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("updating notifier: %w", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

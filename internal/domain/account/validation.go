package account

import (
	"fmt"
	"net/mail"
	"strings"
)

const minPasswordLength = 8

// ValidateSignUp checks that every registration field is present.
func ValidateSignUp(req SignUpRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	return ValidateNotifier(req.Notifier)
}

// ValidateNotifier requires both Telegram settings.
func ValidateNotifier(n Notifier) error {
	if strings.TrimSpace(n.TelegramBotToken) == "" {
		return fmt.Errorf("%w: telegram bot token is required", ErrInvalidInput)
	}
	if strings.TrimSpace(n.TelegramChatID) == "" {
		return fmt.Errorf("%w: telegram chat id is required", ErrInvalidInput)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package account

import "time"

// Notifier holds the Telegram settings used to reach a user.
type Notifier struct {
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

// Configured reports whether both Telegram settings are present.
func (n Notifier) Configured() bool {
	return n.TelegramBotToken != "" && n.TelegramChatID != ""
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Notifier     Notifier  `json:"notifier"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public view of a user.
type Profile struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	// NotifierConfigured hides the token itself.
	NotifierConfigured bool `json:"notifier_configured"`
}

// SignUpRequest describes a registration.
type SignUpRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Username string   `json:"username"`
	Notifier Notifier `json:"notifier"`
}

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
}

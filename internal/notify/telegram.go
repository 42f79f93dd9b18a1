package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTelegramBase = "https://api.telegram.org"

// ErrNotConfigured is returned when the bot token or chat id is missing.
var ErrNotConfigured = errors.New("telegram credentials not configured")

// Telegram sends messages through the Telegram Bot API. The bot token and
// chat id belong to the user, so they are passed per call.
type Telegram struct {
	base string
	http *http.Client
}

// NewTelegram creates a client. An empty base uses the public Bot API.
func NewTelegram(base string, timeout time.Duration) *Telegram {
	if base == "" {
		base = defaultTelegramBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Telegram{base: base, http: &http.Client{Timeout: timeout}}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Send posts text to chatID with the given bot token.
func (t *Telegram) Send(ctx context.Context, botToken, chatID, text string) error {
	if botToken == "" || chatID == "" {
		return ErrNotConfigured
	}

	b, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	endpoint := t.base + "/bot" + botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("sending telegram message: %w", urlErr.Err)
		}
		return errors.New("sending telegram message failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var out apiResponse
	_ = json.Unmarshal(body, &out)
	if resp.StatusCode >= 400 || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("telegram api error (%d): %s", resp.StatusCode, desc)
	}
	return nil
}

package session

import (
	"sync"
	"time"

	"github.com/rpggio/interntrack/internal/domain/listing"
)

// Session is one logged-in user's working context. It owns the user's
// listing cache and serializes the actions performed through it.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	cache *listing.Cache

	actionMu sync.Mutex

	mu           sync.Mutex
	lastActivity time.Time
}

// Cache returns the session's listing cache.
func (s *Session) Cache() *listing.Cache {
	return s.cache
}

// Acquire blocks until no other action is running on the session and returns
// the function that releases it.
func (s *Session) Acquire() (release func()) {
	s.actionMu.Lock()
	s.touch()
	return s.actionMu.Unlock
}

// LastActivity returns when the session last started an action.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Info is a read-only description of a session.
type Info struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Loaded       bool      `json:"loaded"`
}

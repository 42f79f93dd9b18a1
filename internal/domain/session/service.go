package session

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/interntrack/internal/domain/listing"
)

// Manager owns the live sessions of the process.
type Manager struct {
	internships InternshipRepository
	observer    listing.Observer
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	// closed remembers signed-out ids so their tokens can't revive them.
	closed map[string]struct{}
}

// NewManager creates a session manager. observer may be nil.
func NewManager(internships InternshipRepository, observer listing.Observer, logger *slog.Logger) *Manager {
	return &Manager{
		internships: internships,
		observer:    observer,
		logger:      logger,
		sessions:    make(map[string]*Session),
		closed:      make(map[string]struct{}),
	}
}

// Open starts a new session for userID with an unloaded cache.
func (m *Manager) Open(userID string) (*Session, error) {
	return m.Ensure(uuid.NewString(), userID)
}

// Ensure returns the session with id, creating it for userID when it doesn't
// exist. This lets a token outlive a process restart: the session comes back
// with an unloaded cache.
func (m *Manager) Ensure(id, userID string) (*Session, error) {
	if id == "" || userID == "" {
		return nil, ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.closed[id]; ok {
		return nil, ErrSessionClosed
	}
	if sess, ok := m.sessions[id]; ok {
		if sess.UserID != userID {
			return nil, ErrUserMismatch
		}
		return sess, nil
	}

	now := time.Now()
	sess := &Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    now,
		cache:        listing.New(m.internships, userID, m.observer),
		lastActivity: now,
	}
	m.sessions[id] = sess
	if m.logger != nil {
		m.logger.Debug("session opened", "session_id", id, "user_id", userID)
	}
	return sess, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close ends the session and drops its cache.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	if ok {
		m.closed[id] = struct{}{}
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.cache.Invalidate()
	if m.logger != nil {
		m.logger.Debug("session closed", "session_id", id, "user_id", sess.UserID)
	}
	return nil
}

// ListForUser describes the live sessions of userID, oldest first.
func (m *Manager) ListForUser(userID string) []Info {
	m.mu.Lock()
	sessions := make([]*Session, 0)
	for _, sess := range m.sessions {
		if sess.UserID == userID {
			sessions = append(sessions, sess)
		}
	}
	m.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	infos := make([]Info, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, Info{
			SessionID:    sess.ID,
			UserID:       sess.UserID,
			CreatedAt:    sess.CreatedAt,
			LastActivity: sess.LastActivity(),
			Loaded:       sess.cache.Loaded(),
		})
	}
	return infos
}

// ExpireIdle closes sessions whose last activity is older than maxIdle and
// returns how many were closed.
func (m *Manager) ExpireIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var expired []string
	for id, sess := range m.sessions {
		if sess.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	closed := 0
	for _, id := range expired {
		if err := m.Close(id); err == nil {
			closed++
		}
	}
	return closed
}

// Package session keeps per-user display-name sessions in memory.
package session

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
)

// CookieName is the name of the signed session cookie.
const CookieName = "smartcourt-session"

// RestoreParam is the query parameter that restores a session by display name.
const RestoreParam = "user"

const cookieKeyID = "sid"

// maxHistory bounds the turns kept on a session.
const maxHistory = 100

// HistoryEntry is one turn recorded on the session.
type HistoryEntry struct {
	ConversationID int64     `json:"conversation_id,omitempty"`
	Question       string    `json:"question"`
	KnowledgeBase  string    `json:"knowledge_base"`
	Models         []string  `json:"models"`
	Suggestions    []string  `json:"suggestions"`
	Saved          bool      `json:"saved"`
	At             time.Time `json:"at"`
}

// Session is one user's live interaction state.
type Session struct {
	ID           string         `json:"-"`
	Username     string         `json:"username"`
	Created      time.Time      `json:"created"`
	LastActivity time.Time      `json:"last_activity"`
	History      []HistoryEntry `json:"history"`
}

func (s *Session) clone() *Session {
	c := *s
	c.History = append([]HistoryEntry(nil), s.History...)
	if c.History == nil {
		c.History = []HistoryEntry{}
	}
	return &c
}

// Manager owns every live session and expires idle ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	store    *sessions.CookieStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewManager creates a manager whose cookies are signed with the configured
// secret. The secret is SHA-256 hashed to derive a 32-byte key.
func NewManager(cfg *config.SessionConfig, logger *zap.Logger) *Manager {
	key := sha256.Sum256([]byte(cfg.CookieSecret))
	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Timeout().Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}

	return &Manager{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		store:    store,
		now:      time.Now,
		logger:   logger.Named("session"),
	}
}

// Timeout returns the inactivity timeout.
func (m *Manager) Timeout() time.Duration {
	return m.timeout
}

// Create starts a session for a display name. Names are trimmed; an empty
// name is rejected.
func (m *Manager) Create(username string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.ErrEmptyUsername
	}

	now := m.now()
	s := &Session{
		ID:           uuid.NewString(),
		Username:     username,
		Created:      now,
		LastActivity: now,
		History:      []HistoryEntry{},
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(count)
	m.logger.Info("Session started", zap.String("username", username))
	return s.clone(), nil
}

// Get returns a live session and refreshes its activity time. An unknown or
// idle session yields apperrors.ErrSessionExpired and is removed.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionExpired
	}
	now := m.now()
	if now.Sub(s.LastActivity) >= m.timeout {
		delete(m.sessions, id)
		metrics.SetActiveSessions(len(m.sessions))
		return nil, apperrors.ErrSessionExpired
	}
	s.LastActivity = now
	return s.clone(), nil
}

// AppendTurn records a turn on the session and refreshes it.
func (m *Manager) AppendTurn(id string, entry HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return apperrors.ErrSessionExpired
	}
	s.History = append(s.History, entry)
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
	s.LastActivity = m.now()
	return nil
}

// Destroy ends a session. Unknown IDs are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	if ok {
		metrics.SetActiveSessions(count)
		m.logger.Info("Session ended", zap.String("username", s.Username))
	}
}

// Count returns the number of sessions currently held.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes every session idle for at least the timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastActivity) >= m.timeout {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		metrics.SetActiveSessions(count)
		m.logger.Debug("Expired idle sessions", zap.Int("removed", removed), zap.Int("active", count))
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

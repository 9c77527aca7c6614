package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
)

type contextKey string

// SessionKey is the context key for the caller's session.
const SessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// FromContext retrieves the session set by RequireSession.
// Returns nil and false if none is present.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(SessionKey).(*Session)
	return s, ok && s != nil
}

// RequireSession resolves the caller's session (cookie or ?user=) and puts it
// in the request context. Requests without a live session get 401.
func (m *Manager) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.FromRequest(w, r)
		if err != nil {
			if !errors.Is(err, apperrors.ErrSessionExpired) {
				m.logger.Error("Failed to resolve session", zap.Error(err))
			}
			m.unauthorized(w, "Session expired or missing; log in again")
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), s)))
	}
}

// unauthorized returns a 401 response with JSON error body.
func (m *Manager) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "session_expired",
		"message": message,
	})
}

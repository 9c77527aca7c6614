package session

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
)

// Login starts a session and sets the signed cookie.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, username string) (*Session, error) {
	s, err := m.Create(username)
	if err != nil {
		return nil, err
	}
	if err := m.writeCookie(w, r, s.ID); err != nil {
		m.Destroy(s.ID)
		return nil, err
	}
	return s, nil
}

// Logout ends the request's session, if any, and expires the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	cookie, _ := m.store.Get(r, CookieName)
	if id, ok := cookie.Values[cookieKeyID].(string); ok {
		m.Destroy(id)
	}
	delete(cookie.Values, cookieKeyID)
	cookie.Options.MaxAge = -1
	return cookie.Save(r, w)
}

// FromRequest resolves the caller's session. A live cookie wins. Without
// one, a ?user= parameter restores a session for that display name and a
// fresh cookie is written. Otherwise apperrors.ErrSessionExpired.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) (*Session, error) {
	// A cookie that fails verification is treated as absent.
	cookie, _ := m.store.Get(r, CookieName)
	if id, ok := cookie.Values[cookieKeyID].(string); ok {
		s, err := m.Get(id)
		if err == nil {
			// Re-saving slides the cookie expiry with activity.
			if err := cookie.Save(r, w); err != nil {
				m.logger.Warn("Failed to refresh session cookie", zap.Error(err))
			}
			return s, nil
		}
		if !errors.Is(err, apperrors.ErrSessionExpired) {
			return nil, err
		}
	}

	if name := r.URL.Query().Get(RestoreParam); name != "" {
		s, err := m.Login(w, r, name)
		if err != nil {
			return nil, err
		}
		m.logger.Debug("Session restored from query parameter", zap.String("username", s.Username))
		return s, nil
	}
	return nil, apperrors.ErrSessionExpired
}

func (m *Manager) writeCookie(w http.ResponseWriter, r *http.Request, id string) error {
	cookie, _ := m.store.Get(r, CookieName)
	cookie.Values[cookieKeyID] = id
	return cookie.Save(r, w)
}

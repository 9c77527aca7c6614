package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

// LoginRequest for POST /api/session/login
type LoginRequest struct {
	Username string `json:"username"`
}

// SessionResponse describes the caller's live session.
type SessionResponse struct {
	Username       string                 `json:"username"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
	History        []session.HistoryEntry `json:"history"`
}

// SessionHandler handles display-name login and logout.
type SessionHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers the session handler's routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/session"

	mux.HandleFunc("POST "+base+"/login", h.Login)
	mux.HandleFunc("POST "+base+"/logout", h.Logout)
	mux.HandleFunc("GET "+base, h.sessions.RequireSession(h.Get))
}

// Login handles POST /api/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body", h.logger)
		return
	}

	s, err := h.sessions.Login(w, r, req.Username)
	if err != nil {
		writeServiceError(w, err, "Failed to start session", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: h.describe(s)}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Logout handles POST /api/session/logout. It succeeds without a session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Error("Failed to expire session cookie", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "logout_failed", "Failed to end session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Logged out"}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: h.describe(s)}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *SessionHandler) describe(s *session.Session) SessionResponse {
	return SessionResponse{
		Username:       s.Username,
		TimeoutSeconds: int(h.sessions.Timeout().Seconds()),
		History:        s.History,
	}
}

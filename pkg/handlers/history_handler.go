package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

// HistoryListResponse for GET /api/history
type HistoryListResponse struct {
	Conversations []*models.Conversation `json:"conversations"`
	Total         int                    `json:"total"`
}

// CommentRequest for PUT /api/conversations/{cid}/comment. An empty
// comment clears the recommended answer.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// HistoryHandler serves the session user's own conversations.
type HistoryHandler struct {
	historyService services.HistoryService
	sessions       *session.Manager
	logger         *zap.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(historyService services.HistoryService, sessions *session.Manager, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		sessions:       sessions,
		logger:         logger,
	}
}

// RegisterRoutes registers the history handler's routes on the given mux.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", h.sessions.RequireSession(h.List))
	mux.HandleFunc("GET /api/stats", h.sessions.RequireSession(h.Stats))

	base := "/api/conversations/{cid}"
	mux.HandleFunc("GET "+base, h.sessions.RequireSession(h.Get))
	mux.HandleFunc("DELETE "+base, h.sessions.RequireSession(h.Delete))
	mux.HandleFunc("PUT "+base+"/comment", h.sessions.RequireSession(h.UpdateComment))
}

// List handles GET /api/history?limit=&q=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	conversations, err := h.historyService.List(r.Context(), s.Username, parseQueryInt(r, "limit"), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err, "Failed to list history", h.logger)
		return
	}
	if conversations == nil {
		conversations = []*models.Conversation{}
	}

	resp := HistoryListResponse{Conversations: conversations, Total: len(conversations)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: resp}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Stats handles GET /api/stats
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	stats, err := h.historyService.Stats(r.Context(), s.Username)
	if err != nil {
		writeServiceError(w, err, "Failed to compute stats", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: stats}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/conversations/{cid}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	conv, err := h.historyService.Get(r.Context(), conversationID, s.Username)
	if err != nil {
		writeServiceError(w, err, "Failed to load conversation", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: conv}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// UpdateComment handles PUT /api/conversations/{cid}/comment
func (h *HistoryHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body", h.logger)
		return
	}

	if err := h.historyService.UpdateComment(r.Context(), conversationID, s.Username, req.Comment); err != nil {
		writeServiceError(w, err, "Failed to save comment", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Comment saved"}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Delete handles DELETE /api/conversations/{cid}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.historyService.Delete(r.Context(), conversationID, s.Username); err != nil {
		writeServiceError(w, err, "Failed to delete conversation", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Conversation deleted"}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

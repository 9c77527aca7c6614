package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

// FeedbackRequest for PUT /api/responses/{rid}/feedback. A score of 0 leaves
// the dimension unrated.
type FeedbackRequest struct {
	models.Scores
	Comment string `json:"comment"`
}

// FeedbackHandler records star ratings on single responses.
type FeedbackHandler struct {
	feedbackService services.FeedbackService
	sessions        *session.Manager
	logger          *zap.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(feedbackService services.FeedbackService, sessions *session.Manager, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		sessions:        sessions,
		logger:          logger,
	}
}

// RegisterRoutes registers the feedback handler's routes on the given mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/responses/{rid}/feedback"

	mux.HandleFunc("PUT "+base, h.sessions.RequireSession(h.Rate))
	mux.HandleFunc("GET "+base, h.sessions.RequireSession(h.Get))
}

// Rate handles PUT /api/responses/{rid}/feedback. The latest rating wins.
func (h *FeedbackHandler) Rate(w http.ResponseWriter, r *http.Request) {
	responseID, ok := ParseResponseID(w, r, h.logger)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body", h.logger)
		return
	}

	fb, err := h.feedbackService.Rate(r.Context(), responseID, req.Scores, req.Comment)
	if err != nil {
		writeServiceError(w, err, "Failed to save feedback", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: fb}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/responses/{rid}/feedback
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	responseID, ok := ParseResponseID(w, r, h.logger)
	if !ok {
		return
	}

	fb, err := h.feedbackService.Get(r.Context(), responseID)
	if err != nil {
		writeServiceError(w, err, "Failed to load feedback", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: fb}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

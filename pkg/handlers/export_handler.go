package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

const (
	contentTypeCSV = "text/csv; charset=utf-8"
	contentTypePDF = "application/pdf"
)

// ExportHandler serves CSV and PDF downloads of the session user's history.
type ExportHandler struct {
	exportService services.ExportService
	sessions      *session.Manager
	logger        *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService services.ExportService, sessions *session.Manager, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		sessions:      sessions,
		logger:        logger,
	}
}

// RegisterRoutes registers the export handler's routes on the given mux.
func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history/export.csv", h.sessions.RequireSession(h.HistoryCSV))
	mux.HandleFunc("GET /api/conversations/{cid}/export.pdf", h.sessions.RequireSession(h.ConversationPDF))
}

// HistoryCSV handles GET /api/history/export.csv
func (h *ExportHandler) HistoryCSV(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	// Rendered fully before any byte is sent so failures can still be JSON.
	var buf bytes.Buffer
	if err := h.exportService.HistoryCSV(r.Context(), &buf, s.Username); err != nil {
		writeServiceError(w, err, "Failed to export history", h.logger)
		return
	}

	filename := fmt.Sprintf("chat_history_%s.csv", time.Now().Format("20060102_150405"))
	writeAttachment(w, contentTypeCSV, filename, buf.Bytes(), h.logger)
}

// ConversationPDF handles GET /api/conversations/{cid}/export.pdf
func (h *ExportHandler) ConversationPDF(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.ConversationPDF(r.Context(), &buf, conversationID, s.Username); err != nil {
		writeServiceError(w, err, "Failed to export conversation", h.logger)
		return
	}

	filename := "conversation_" + strconv.FormatInt(conversationID, 10) + ".pdf"
	writeAttachment(w, contentTypePDF, filename, buf.Bytes(), h.logger)
}

// writeAttachment sends body as a file download.
func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte, logger *zap.Logger) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write download", zap.String("filename", filename), zap.Error(err))
	}
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/services"
	"github.com/smartcourt/smartcourt-engine/pkg/session"
)

// AdminHandler serves the cross-user analytics dashboard and report.
type AdminHandler struct {
	analyticsService services.AnalyticsService
	exportService    services.ExportService
	sessions         *session.Manager
	logger           *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	sessions *session.Manager,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		analyticsService: analyticsService,
		exportService:    exportService,
		sessions:         sessions,
		logger:           logger,
	}
}

// RegisterRoutes registers the admin handler's routes on the given mux.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/admin"

	mux.HandleFunc("GET "+base+"/analytics", h.sessions.RequireSession(h.Analytics))
	mux.HandleFunc("GET "+base+"/report.csv", h.sessions.RequireSession(h.ReportCSV))
}

// Analytics handles GET /api/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analyticsService.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to compute analytics", h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: dashboard}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// ReportCSV handles GET /api/admin/report.csv
func (h *AdminHandler) ReportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.exportService.ReportCSV(r.Context(), &buf); err != nil {
		writeServiceError(w, err, "Failed to export report", h.logger)
		return
	}

	filename := fmt.Sprintf("feedback_report_%s.csv", time.Now().Format("20060102"))
	writeAttachment(w, contentTypeCSV, filename, buf.Bytes(), h.logger)
}

package handlers

import (
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Service          string `json:"service"`
	GoVersion        string `json:"go_version"`
	Hostname         string `json:"hostname"`
	Environment      string `json:"environment"`
	Models           int    `json:"models"`
	RetrievalEnabled bool   `json:"retrieval_enabled"`
	ActiveSessions   int    `json:"active_sessions"`
}

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Count() int
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg              *config.Config
	sessions         SessionCounter
	retrievalEnabled bool
	logger           *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. sessions may be nil.
func NewHealthHandler(cfg *config.Config, sessions SessionCounter, retrievalEnabled bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:              cfg,
		sessions:         sessions,
		retrievalEnabled: retrievalEnabled,
		logger:           logger,
	}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Returns a plain "ok" for load balancer health checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests.
// Returns service information including version and configured models.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:           "ok",
		Version:          h.cfg.Version,
		Service:          "smartcourt-engine",
		GoVersion:        runtime.Version(),
		Hostname:         hostname,
		Environment:      h.cfg.Env,
		Models:           len(h.cfg.Models),
		RetrievalEnabled: h.retrievalEnabled,
	}
	if h.sessions != nil {
		response.ActiveSessions = h.sessions.Count()
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}

package handlers

import (
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/mcp"
	"github.com/smartcourt/smartcourt-engine/pkg/middleware"
)

// maxMCPBody bounds one JSON-RPC request. A question plus arguments is small.
const maxMCPBody = 1 << 20

// MCPHandler serves the MCP tool surface at /mcp.
type MCPHandler struct {
	transport http.Handler
	logger    *zap.Logger
}

// NewMCPHandler creates a new MCP handler from an MCP server.
func NewMCPHandler(mcpServer *mcp.Server, logger *zap.Logger) *MCPHandler {
	return &MCPHandler{
		transport: mcpServer.HTTPHandler(),
		logger:    logger,
	}
}

// RegisterRoutes registers the MCP endpoint. Tools take the display name as
// an argument, so the endpoint needs no session cookie.
func (h *MCPHandler) RegisterRoutes(mux *http.ServeMux) {
	// Requests are checked before the logger reads the body.
	logged := middleware.MCPRequestLogger(h.logger)(h.transport)
	mux.Handle("/mcp", h.guard(logged))
}

// guard admits only JSON POSTs of bounded size. The transport is stateless,
// so GET streams and DELETE session teardown have nothing to serve.
func (h *MCPHandler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
			if err := ErrorResponse(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "MCP requests must be application/json"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxMCPBody)
		next.ServeHTTP(w, r)
	})
}

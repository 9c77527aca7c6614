// Package mcp exposes the comparison service as MCP tools over streamable HTTP.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Instructions are returned to clients on initialize.
const Instructions = `Compare answers from several language models to one legal question.
Call list_models for the selectable models and knowledge bases, then
ask_models with a username and question. Each ask is saved to that user's
history, which conversation_history returns newest first.`

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates the MCP server. Tool calls are observed for logging and
// metrics, and a panicking tool becomes a JSON-RPC error.
func NewServer(name, version string, logger *zap.Logger) *Server {
	observer := NewToolObserver(logger)
	mcpServer := server.NewMCPServer(
		name,
		version,
		// The tool set is fixed once the server starts.
		server.WithToolCapabilities(false),
		server.WithInstructions(Instructions),
		server.WithRecovery(),
		server.WithHooks(observer.Hooks()),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger.Named("mcp"),
	}
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// HTTPHandler returns the streamable HTTP transport. It is stateless: every
// POST carries a complete JSON-RPC request and no MCP session is kept.
// Routing to /mcp is left to the caller's mux.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}

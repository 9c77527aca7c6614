// Package tools implements the MCP tools of the comparison service.
package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

// ToolDeps holds everything the MCP tools call into.
type ToolDeps struct {
	Config           *config.Config
	Chat             services.ChatService
	History          services.HistoryService
	Version          string
	RetrievalEnabled bool
	Logger           *zap.Logger
}

// RegisterAll adds every tool to s.
func RegisterAll(s *server.MCPServer, deps *ToolDeps) {
	RegisterHealthTool(s, deps)
	RegisterListModelsTool(s, deps)
	RegisterAskTool(s, deps)
	RegisterHistoryTool(s, deps)
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Models           int    `json:"models"`
	RetrievalEnabled bool   `json:"retrieval_enabled"`
}

// RegisterHealthTool adds a health check tool to the MCP server.
func RegisterHealthTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status and version"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(healthResult{
			Status:           "ok",
			Version:          deps.Version,
			Models:           len(deps.Config.Models),
			RetrievalEnabled: deps.RetrievalEnabled,
		})
	})
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

type listModelsResult struct {
	Models            []config.ModelConfig         `json:"models"`
	KnowledgeBases    []config.KnowledgeBaseConfig `json:"knowledge_bases"`
	MaxSelected       int                          `json:"max_selected"`
	DefaultTemperature float64                      `json:"default_temperature"`
}

// RegisterListModelsTool adds list_models, which returns the model registry
// and the selectable knowledge bases.
func RegisterListModelsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"list_models",
		mcp.WithDescription("Lists the models that can be compared and the knowledge bases that can ground answers"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(listModelsResult{
			Models:            deps.Config.Models,
			KnowledgeBases:    deps.Config.KnowledgeBases,
			MaxSelected:       services.MaxSelectedModels,
			DefaultTemperature: services.DefaultTemperature,
		})
	})
}

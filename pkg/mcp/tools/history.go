package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

type historyResult struct {
	Username      string                 `json:"username"`
	Conversations []*models.Conversation `json:"conversations"`
	Count         int                    `json:"count"`
}

// RegisterHistoryTool adds conversation_history, which lists a user's past
// turns newest first with every model answer and its rating.
func RegisterHistoryTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"conversation_history",
		mcp.WithDescription("Lists a user's past questions newest first, with each model's answer and any feedback"),
		mcp.WithString(
			"username",
			mcp.Required(),
			mcp.Description("Display name whose history to list"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Optional maximum number of conversations (default 50, max 500)"),
		),
		mcp.WithString(
			"search",
			mcp.Description("Optional text that the question must contain"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username := getOptionalString(req, "username")
		limit := 0
		if l, ok := getOptionalFloat(req, "limit"); ok {
			limit = int(l)
		}

		conversations, err := deps.History.List(ctx, username, limit, getOptionalString(req, "search"))
		if err != nil {
			if code, ok := inputErrorCode(err); ok {
				return NewErrorResult(code, err.Error()), nil
			}
			return nil, err
		}
		if conversations == nil {
			conversations = []*models.Conversation{}
		}
		return jsonResult(historyResult{
			Username:      username,
			Conversations: conversations,
			Count:         len(conversations),
		})
	})
}

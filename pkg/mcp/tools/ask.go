package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

// askResult is the tool's view of a turn. Saved=false with SaveError set
// means the answers are real but the turn is not in history.
type askResult struct {
	*services.Turn
	SaveError string `json:"save_error,omitempty"`
}

// RegisterAskTool adds ask_models, which runs one full turn: retrieval,
// parallel model calls, persistence, and follow-up suggestions.
func RegisterAskTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"ask_models",
		mcp.WithDescription("Asks several models the same question, grounded on a knowledge base, and returns every answer with its cost and latency plus suggested follow-up questions"),
		mcp.WithString(
			"username",
			mcp.Required(),
			mcp.Description("Display name of the asking user, e.g. 'Clerk (Senior) - Central Administrative Court'"),
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question to ask"),
		),
		mcp.WithArray(
			"models",
			mcp.Required(),
			mcp.Description("Model keys to compare (see list_models)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString(
			"knowledge_base",
			mcp.Description("Optional knowledge base label (see list_models); omitted means no retrieval"),
		),
		mcp.WithNumber(
			"temperature",
			mcp.Description("Optional sampling temperature between 0 and 1 (default 0.3)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		askReq := services.AskRequest{
			Username:      getOptionalString(req, "username"),
			Question:      getOptionalString(req, "question"),
			KnowledgeBase: getOptionalString(req, "knowledge_base"),
			Models:        getOptionalStringSlice(req, "models"),
		}
		if t, ok := getOptionalFloat(req, "temperature"); ok {
			askReq.Temperature = &t
		}

		turn, err := deps.Chat.Ask(llm.WithCallInfo(ctx, llm.CallInfo{Source: llm.SourceMCP}), askReq, services.TurnHooks{})
		if turn == nil {
			if code, ok := inputErrorCode(err); ok {
				return NewErrorResult(code, err.Error()), nil
			}
			return nil, err
		}

		result := askResult{Turn: turn}
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotDurablySaved) {
				return nil, err
			}
			deps.Logger.Warn("Turn answered over MCP but not saved",
				zap.String("username", askReq.Username),
				zap.Error(err))
			result.SaveError = err.Error()
		}
		return jsonResult(result)
	})
}

package mcp

import (
	"context"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
)

// ToolObserver times MCP tool calls and records their outcome.
type ToolObserver struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewToolObserver creates an observer that logs through logger.
func NewToolObserver(logger *zap.Logger) *ToolObserver {
	return &ToolObserver{logger: logger.Named("mcp-tools")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (o *ToolObserver) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(o.beforeCallTool)
	hooks.AddAfterCallTool(o.afterCallTool)
	hooks.AddOnError(o.onError)
	return hooks
}

func (o *ToolObserver) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	o.startTimes.Store(id, time.Now())
}

func (o *ToolObserver) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	elapsed := o.elapsed(id)

	// Tool-level failures come back as results flagged IsError.
	outcome := "success"
	if result != nil && result.IsError {
		outcome = "error"
	}
	metrics.ObserveMCPTool(req.Params.Name, outcome, elapsed.Seconds())
	o.logger.Info("MCP tool call",
		zap.String("tool", req.Params.Name),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed))
}

func (o *ToolObserver) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}
	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	elapsed := o.elapsed(id)
	metrics.ObserveMCPTool(req.Params.Name, "error", elapsed.Seconds())
	o.logger.Warn("MCP tool call failed",
		zap.String("tool", req.Params.Name),
		zap.Duration("duration", elapsed),
		zap.Error(err))
}

// elapsed returns the time since the call started, or zero when the start
// was never seen.
func (o *ToolObserver) elapsed(id any) time.Duration {
	if v, ok := o.startTimes.LoadAndDelete(id); ok {
		return time.Since(v.(time.Time))
	}
	return 0
}

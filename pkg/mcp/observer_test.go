package mcp

import (
	"context"
	"errors"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func toolRequest(name string) *mcplib.CallToolRequest {
	req := &mcplib.CallToolRequest{}
	req.Params.Name = name
	return req
}

func TestToolObserver_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	o := NewToolObserver(zap.New(core))
	ctx := context.Background()

	o.beforeCallTool(ctx, 1, toolRequest("list_models"))
	o.afterCallTool(ctx, 1, toolRequest("list_models"), mcplib.NewToolResultText("ok"))

	failed := mcplib.NewToolResultText("bad")
	failed.IsError = true
	o.beforeCallTool(ctx, 2, toolRequest("ask_models"))
	o.afterCallTool(ctx, 2, toolRequest("ask_models"), failed)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "success", logs.All()[0].ContextMap()["outcome"])
	assert.Equal(t, "error", logs.All()[1].ContextMap()["outcome"])

	_, pending := o.startTimes.Load(1)
	assert.False(t, pending, "start times are released after the call")
}

func TestToolObserver_OnError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	o := NewToolObserver(zap.New(core))
	ctx := context.Background()

	o.onError(ctx, 1, mcplib.MethodToolsList, nil, errors.New("ignored"))
	assert.Equal(t, 0, logs.Len(), "non tool-call errors are ignored")

	o.beforeCallTool(ctx, 2, toolRequest("ask_models"))
	o.onError(ctx, 2, mcplib.MethodToolsCall, toolRequest("ask_models"), errors.New("boom"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "MCP tool call failed", logs.All()[0].Message)
	assert.Equal(t, "ask_models", logs.All()[0].ContextMap()["tool"])
}

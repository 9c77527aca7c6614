package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

// ============================================================================
// Service mocks
// ============================================================================

type mockChatService struct {
	askFunc func(ctx context.Context, req services.AskRequest, hooks services.TurnHooks) (*services.Turn, error)
	lastReq services.AskRequest
}

func (m *mockChatService) Ask(ctx context.Context, req services.AskRequest, hooks services.TurnHooks) (*services.Turn, error) {
	m.lastReq = req
	return m.askFunc(ctx, req, hooks)
}

type mockHistoryService struct {
	services.HistoryService
	listFunc func(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error)
}

func (m *mockHistoryService) List(ctx context.Context, username string, limit int, search string) ([]*models.Conversation, error) {
	return m.listFunc(ctx, username, limit, search)
}

// ============================================================================
// Harness
// ============================================================================

func testDeps() *ToolDeps {
	return &ToolDeps{
		Config: &config.Config{
			Models: []config.ModelConfig{
				{Key: "Typhoon", DisplayName: "Typhoon", Provider: config.ProviderOpenAICompat, Endpoint: "http://typhoon"},
				{Key: "OpenThaiGPT", DisplayName: "OpenThaiGPT", Provider: config.ProviderOpenAICompat, Endpoint: "http://otg"},
			},
			KnowledgeBases: []config.KnowledgeBaseConfig{{Label: "Court Manual", ID: "KB123"}},
		},
		Chat:    &mockChatService{},
		History: &mockHistoryService{},
		Version: "1.2.3",
		Logger:  zap.NewNop(),
	}
}

func newTestServer(deps *ToolDeps) *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterAll(s, deps)
	return s
}

type toolCallResponse struct {
	Result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// callTool sends tools/call and returns the decoded response.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolCallResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), body))
	require.NoError(t, err)

	var resp toolCallResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

// decodeText unmarshals the first text content of a successful call.
func decodeText(t *testing.T, resp toolCallResponse, v any) {
	t.Helper()
	require.Nil(t, resp.Error)
	require.NotEmpty(t, resp.Result.Content)
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), v))
}

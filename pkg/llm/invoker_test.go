package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/testhelpers"
)

func newTestInvoker(t *testing.T, clients map[string]ChatClient) (*Invoker, *config.Config) {
	t.Helper()
	cfg := testhelpers.TestConfig(t, "http://llm.test/v1/chat/completions")
	return NewInvoker(cfg, clients, zap.NewNop()), cfg
}

func TestInvoker_BuildInput(t *testing.T) {
	inv, _ := newTestInvoker(t, nil)

	got := inv.BuildInput("ถามอะไร", "- chunk\n")
	assert.Equal(t, "SYSTEM\n\nContext:\n- chunk\n\nUser Question: ถามอะไร", got)
}

func TestInvoker_Invoke_Success(t *testing.T) {
	mock := NewMockChatClient("<think>hidden</think>\nคำตอบ")
	inv, cfg := newTestInvoker(t, map[string]ChatClient{"Typhoon": mock})

	citations := []models.Citation{{Filename: "manual.pdf", Preview: "..."}}
	result := inv.Invoke(context.Background(), "Typhoon", "question", "ctx", citations, 0.3)

	assert.False(t, result.Failed())
	assert.Equal(t, "Typhoon", result.Model)
	assert.Equal(t, "คำตอบ", result.Answer)
	assert.Equal(t, citations, result.Citations)
	assert.Equal(t, "Typhoon", result.Config.Key)
	assert.GreaterOrEqual(t, result.Latency, 0.0)

	input := inv.BuildInput("question", "ctx")
	wantCost := EstimateCost(input, "คำตอบ", config.Price{Input: 1.0, Output: 2.0},
		cfg.Invocation.CharsPerToken, cfg.Invocation.CurrencyRate)
	assert.InDelta(t, wantCost, result.Cost, 1e-12)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, input, reqs[0].Prompt)
	assert.Equal(t, 2048, reqs[0].MaxTokens)
	assert.InDelta(t, 0.3, reqs[0].Temperature, 1e-9)
}

func TestInvoker_Invoke_NilCitationsBecomeEmpty(t *testing.T) {
	inv, _ := newTestInvoker(t, map[string]ChatClient{"Typhoon": NewMockChatClient("ok")})

	result := inv.Invoke(context.Background(), "Typhoon", "q", "", nil, 0.7)
	require.NotNil(t, result.Citations)
	assert.Empty(t, result.Citations)
}

func TestInvoker_Invoke_HTTPErrorBecomesAnswer(t *testing.T) {
	mock := &MockChatClient{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
		return "", ClassifyError(&openai.RequestError{HTTPStatusCode: 500, Body: []byte("boom")})
	}}
	inv, cfg := newTestInvoker(t, map[string]ChatClient{"Typhoon": mock})

	result := inv.Invoke(context.Background(), "Typhoon", "q", "", nil, 0.7)

	assert.True(t, result.Failed())
	assert.Equal(t, "⚠️ Error: API Error: 500 - boom", result.Answer)
	assert.Equal(t, ErrorTypeEndpoint, result.Err.Type)
	assert.Equal(t, "Typhoon", result.Err.Model)

	// Cost is still charged on the input and the error text.
	wantCost := EstimateCost(inv.BuildInput("q", ""), result.Answer, config.Price{Input: 1.0, Output: 2.0},
		cfg.Invocation.CharsPerToken, cfg.Invocation.CurrencyRate)
	assert.InDelta(t, wantCost, result.Cost, 1e-12)
}

func TestInvoker_Invoke_MissingAPIKey(t *testing.T) {
	mock := NewMockChatClient("unused")
	inv, cfg := newTestInvoker(t, map[string]ChatClient{"Typhoon": mock})
	cfg.Secrets.ThaiLLMAPIKey = ""

	result := inv.Invoke(context.Background(), "Typhoon", "q", "", nil, 0.7)

	assert.True(t, result.Failed())
	assert.Equal(t, "⚠️ Error: THAILLM_API_KEY missing", result.Answer)
	assert.Equal(t, ErrorTypeConfig, result.Err.Type)
	assert.Equal(t, 0, mock.Calls(), "no request is sent without a key")
}

func TestInvoker_Invoke_UnknownModel(t *testing.T) {
	inv, _ := newTestInvoker(t, map[string]ChatClient{})

	result := inv.Invoke(context.Background(), "Nope", "q", "", nil, 0.7)

	assert.True(t, result.Failed())
	assert.True(t, strings.HasPrefix(result.Answer, ErrorAnswerPrefix))
	assert.Equal(t, "", result.Config.Key)
	assert.Zero(t, result.Cost)
}

func TestInvoker_Invoke_UnpricedModelCostsNothing(t *testing.T) {
	inv, _ := newTestInvoker(t, map[string]ChatClient{"Pathumma": NewMockChatClient("answer")})

	result := inv.Invoke(context.Background(), "Pathumma", "q", "", nil, 0.7)

	assert.False(t, result.Failed())
	assert.Zero(t, result.Cost)
}

func TestInvoker_Invoke_Timeout(t *testing.T) {
	mock := &MockChatClient{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	inv, cfg := newTestInvoker(t, map[string]ChatClient{"Typhoon": mock})
	cfg.Invocation.TimeoutSeconds = 1

	start := time.Now()
	result := inv.Invoke(context.Background(), "Typhoon", "q", "", nil, 0.7)

	assert.True(t, result.Failed())
	assert.Equal(t, ErrorTypeTimeout, result.Err.Type)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.GreaterOrEqual(t, result.Latency, 1.0)
}

func TestInvoker_Complete(t *testing.T) {
	mock := NewMockChatClient("<think>x</think>คำถาม 1\nคำถาม 2")
	inv, _ := newTestInvoker(t, map[string]ChatClient{"Typhoon": mock})

	got, err := inv.Complete(context.Background(), "Typhoon", "prompt", 200, 0.7, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "คำถาม 1\nคำถาม 2", got)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "prompt", reqs[0].Prompt)
	assert.Equal(t, 200, reqs[0].MaxTokens)
}

func TestInvoker_Complete_PropagatesError(t *testing.T) {
	mock := &MockChatClient{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
		return "", NewError(ErrorTypeRateLimit, "rate limited", nil)
	}}
	inv, _ := newTestInvoker(t, map[string]ChatClient{"Typhoon": mock})

	_, err := inv.Complete(context.Background(), "Typhoon", "prompt", 200, 0.7, time.Second)

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeRateLimit, llmErr.Type)
}

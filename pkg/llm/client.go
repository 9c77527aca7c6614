package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	apiKeyHeader    = "apikey"
	requestIDHeader = "X-Request-Id"
)

// Client provides access to OpenAI-compatible chat completion endpoints that
// authenticate with an "apikey" header.
type Client struct {
	client   *openai.Client
	endpoint string
	model    string
	logger   *zap.Logger
}

// Config holds configuration for creating a model client.
type Config struct {
	Endpoint string // Base URL or full chat/completions URL
	Model    string // Value sent in the payload "model" field, e.g. "/model"
	APIKey   string // Sent as the apikey header (or x-api-key for Anthropic)
	ModelKey string // Registry key, for logging
}

// NewClient creates a new OpenAI-compatible model client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	// No bearer token: these endpoints authenticate with the apikey header only.
	clientConfig := openai.DefaultConfig("")
	clientConfig.BaseURL = BaseURL(cfg.Endpoint)
	clientConfig.HTTPClient = &http.Client{
		Transport: &headerTransport{apiKey: cfg.APIKey, base: http.DefaultTransport},
	}

	return &Client{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		logger:   logger.Named("llm").With(zap.String("model_key", cfg.ModelKey)),
	}, nil
}

// BaseURL strips a trailing /chat/completions so full endpoint URLs and base
// URLs are both accepted; the SDK appends the path itself.
func BaseURL(endpoint string) string {
	base := strings.TrimSuffix(endpoint, "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	return base
}

// Complete sends the prompt as a single user message.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	c.logger.Debug("Model request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Float64("temperature", req.Temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: wireTemperature(req.Temperature),
	})
	if err != nil {
		c.logger.Debug("Model request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", c.parseError(err)
	}

	// A reply without choices is an empty answer, not an error.
	if len(resp.Choices) == 0 {
		return "", nil
	}

	c.logger.Debug("Model request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// wireTemperature maps 0 to the smallest positive float32. The SDK omits a
// zero temperature from the body and the server would apply its own default.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// GetEndpoint returns the configured endpoint.
func (c *Client) GetEndpoint() string {
	return c.endpoint
}

// parseError categorizes API errors using the structured Error type.
func (c *Client) parseError(err error) error {
	llmErr := ClassifyError(err)
	llmErr.Endpoint = c.endpoint
	return llmErr
}

// headerTransport adds the apikey header and propagates the request ID.
type headerTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.apiKey != "" {
		req.Header.Set(apiKeyHeader, t.apiKey)
	}
	if id := RequestID(req.Context()); id != "" {
		req.Header.Set(requestIDHeader, id)
	}
	return t.base.RoundTrip(req)
}

// Package llm invokes hosted language models and meters each call.
package llm

import (
	"context"
)

// CompletionRequest is a single-turn prompt sent as one user message.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ChatClient defines the interface for one model endpoint.
// Use this interface for dependency injection to enable mocking in tests.
type ChatClient interface {
	// Complete returns the raw text of the first choice. Non-2xx replies
	// and transport failures are returned as *Error.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure clients implement ChatClient at compile time.
var (
	_ ChatClient = (*Client)(nil)
	_ ChatClient = (*AnthropicClient)(nil)
)

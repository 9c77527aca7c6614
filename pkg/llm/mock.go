package llm

import (
	"context"
	"sync"
)

// MockChatClient is a configurable mock for testing model invocation.
// Set CompleteFunc to control behavior in tests. Safe for concurrent use.
type MockChatClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns Response and nil error.
	CompleteFunc func(ctx context.Context, req CompletionRequest) (string, error)

	// Response is returned when CompleteFunc is nil.
	Response string

	// Endpoint is returned by GetEndpoint. Defaults to "http://mock-endpoint".
	Endpoint string

	mu       sync.Mutex
	requests []CompletionRequest
}

// NewMockChatClient creates a new mock that always answers with response.
func NewMockChatClient(response string) *MockChatClient {
	return &MockChatClient{
		Response: response,
		Endpoint: "http://mock-endpoint",
	}
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return m.Response, nil
}

// GetEndpoint implements ChatClient.
func (m *MockChatClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

// Calls returns the number of Complete invocations.
func (m *MockChatClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received.
func (m *MockChatClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Ensure MockChatClient implements ChatClient at compile time.
var _ ChatClient = (*MockChatClient)(nil)

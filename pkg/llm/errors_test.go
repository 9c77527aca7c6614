package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

func TestClassifyError_Nil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestClassifyError_AlreadyClassified(t *testing.T) {
	original := NewError(ErrorTypeAuth, "bad key", nil)
	wrapped := fmt.Errorf("call failed: %w", original)

	got := ClassifyError(wrapped)
	if got != original {
		t.Errorf("expected the original *Error to be returned, got %v", got)
	}
}

func TestClassifyError_OpenAIRequestError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorType
	}{
		{"unauthorized", 401, "unauthorized", ErrorTypeAuth},
		{"forbidden", 403, "forbidden", ErrorTypeAuth},
		{"model missing", 404, "model /model not found", ErrorTypeModel},
		{"path missing", 404, "no route", ErrorTypeEndpoint},
		{"rate limited", 429, "slow down", ErrorTypeRateLimit},
		{"server error", 502, "bad gateway", ErrorTypeEndpoint},
		{"bad request", 400, "bad input", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &openai.RequestError{HTTPStatusCode: tt.status, Body: []byte(tt.body + "\n")}
			got := ClassifyError(err)
			if got.Type != tt.want {
				t.Errorf("type = %q, want %q", got.Type, tt.want)
			}
			if got.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", got.StatusCode, tt.status)
			}
			want := fmt.Sprintf("API Error: %d - %s", tt.status, tt.body)
			if got.Detail() != want {
				t.Errorf("Detail() = %q, want %q", got.Detail(), want)
			}
		})
	}
}

func TestClassifyError_OpenAIAPIError(t *testing.T) {
	err := &openai.APIError{HTTPStatusCode: 401, Message: "invalid apikey"}
	got := ClassifyError(err)
	if got.Type != ErrorTypeAuth {
		t.Errorf("type = %q, want auth", got.Type)
	}
	if got.Detail() != "API Error: 401 - invalid apikey" {
		t.Errorf("unexpected detail %q", got.Detail())
	}
}

func TestClassifyError_AnthropicAPIError(t *testing.T) {
	apiErr := &anthropic.APIError{Type: "overloaded_error", Message: "overloaded"}
	got := ClassifyError(fmt.Errorf("error, status code: 529, message: %w", apiErr))
	if got.Type != ErrorTypeEndpoint {
		t.Errorf("type = %q, want endpoint", got.Type)
	}
	if got.Detail() != "API Error: 529 - overloaded" {
		t.Errorf("unexpected detail %q", got.Detail())
	}
}

func TestClassifyError_Timeout(t *testing.T) {
	got := ClassifyError(fmt.Errorf("post: %w", context.DeadlineExceeded))
	if got.Type != ErrorTypeTimeout {
		t.Errorf("type = %q, want timeout", got.Type)
	}
	if got.StatusCode != 0 {
		t.Errorf("timeout should not carry a status, got %d", got.StatusCode)
	}
	if got.Detail() != "post: context deadline exceeded" {
		t.Errorf("unexpected detail %q", got.Detail())
	}
}

func TestClassifyError_ConnectionRefused(t *testing.T) {
	got := ClassifyError(errors.New("dial tcp 127.0.0.1:9: connect: connection refused"))
	if got.Type != ErrorTypeEndpoint {
		t.Errorf("type = %q, want endpoint", got.Type)
	}
}

func TestClassifyError_Unknown(t *testing.T) {
	got := ClassifyError(errors.New("something odd"))
	if got.Type != ErrorTypeUnknown {
		t.Errorf("type = %q, want unknown", got.Type)
	}
}

func TestError_DetailWithoutCause(t *testing.T) {
	err := NewError(ErrorTypeConfig, "THAILLM_API_KEY missing", nil)
	if err.Detail() != "THAILLM_API_KEY missing" {
		t.Errorf("unexpected detail %q", err.Detail())
	}
}

func TestError_ErrorString(t *testing.T) {
	err := NewErrorWithContext(ErrorTypeEndpoint, "server error", errors.New("boom"), "Typhoon", "http://x", 500)
	want := "endpoint HTTP 500 model=Typhoon server error: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, err.Cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestGetErrorType(t *testing.T) {
	if GetErrorType(NewError(ErrorTypeRateLimit, "x", nil)) != ErrorTypeRateLimit {
		t.Error("expected rate_limit")
	}
	if GetErrorType(errors.New("plain")) != ErrorTypeUnknown {
		t.Error("expected unknown for plain errors")
	}
}

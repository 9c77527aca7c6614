package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

// ErrorType classifies a failed model call.
type ErrorType string

const (
	ErrorTypeNone      ErrorType = ""
	ErrorTypeEndpoint  ErrorType = "endpoint"
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeModel     ErrorType = "model"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents a structured model error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Body       string    // Response body (or API error message) for non-2xx replies
	Model      string    // Model key if known
	Endpoint   string    // Endpoint URL if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail is the user-facing description placed after the error marker in an answer.
// HTTP failures render as "API Error: <status> - <body>".
func (e *Error) Detail() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// NewError creates a new structured model error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewErrorWithContext creates a new structured model error with additional context.
func NewErrorWithContext(errType ErrorType, message string, cause error, model, endpoint string, statusCode int) *Error {
	return &Error{
		Type:       errType,
		Message:    message,
		Cause:      cause,
		Model:      model,
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// Non-2xx replies from either SDK keep their status code and body.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	var (
		oaReqErr *openai.RequestError
		oaAPIErr *openai.APIError
		anReqErr *anthropic.RequestError
		anAPIErr *anthropic.APIError
	)
	switch {
	case errors.As(err, &oaReqErr):
		return classifyStatus(err, oaReqErr.HTTPStatusCode, strings.TrimSpace(string(oaReqErr.Body)))
	case errors.As(err, &oaAPIErr):
		return classifyStatus(err, oaAPIErr.HTTPStatusCode, oaAPIErr.Message)
	case errors.As(err, &anReqErr):
		body := ""
		if anReqErr.Err != nil {
			body = anReqErr.Err.Error()
		}
		return classifyStatus(err, anReqErr.StatusCode, body)
	case errors.As(err, &anAPIErr):
		return classifyAnthropicAPIError(err, anAPIErr)
	}

	lower := strings.ToLower(err.Error())

	// Timeout and deadline exceeded
	if strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled") {
		return NewError(ErrorTypeTimeout, "request timeout", err)
	}

	// Connection errors
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		return NewError(ErrorTypeEndpoint, "connection failed", err)
	}

	return NewError(ErrorTypeUnknown, "llm error", err)
}

func classifyStatus(cause error, status int, body string) *Error {
	e := &Error{Cause: cause, StatusCode: status, Body: body}
	lower := strings.ToLower(body)

	switch {
	case status == 401 || status == 403:
		e.Type, e.Message = ErrorTypeAuth, "authentication failed"
	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		e.Type, e.Message = ErrorTypeModel, "model not found"
	case status == 404:
		e.Type, e.Message = ErrorTypeEndpoint, "endpoint not found"
	case status == 429:
		e.Type, e.Message = ErrorTypeRateLimit, "rate limited"
	case status >= 500:
		e.Type, e.Message = ErrorTypeEndpoint, "server error"
	default:
		e.Type, e.Message = ErrorTypeUnknown, "llm error"
	}
	return e
}

// classifyAnthropicAPIError handles JSON error envelopes, which carry a type
// string instead of an HTTP status.
func classifyAnthropicAPIError(cause error, apiErr *anthropic.APIError) *Error {
	status := 0
	switch string(apiErr.Type) {
	case "invalid_request_error":
		status = 400
	case "authentication_error":
		status = 401
	case "permission_error":
		status = 403
	case "not_found_error":
		status = 404
	case "request_too_large":
		status = 413
	case "rate_limit_error":
		status = 429
	case "api_error":
		status = 500
	case "overloaded_error":
		status = 529
	}
	return classifyStatus(cause, status, apiErr.Message)
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}

package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
)

// ErrorResponse is a structured error returned as a tool result so the
// client sees the detail instead of a bare transport failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use it for input errors the caller can fix; system failures still
// return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	})
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// inputErrorCode classifies errors the caller caused. ok is false for
// anything that should surface as a system failure.
func inputErrorCode(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, apperrors.ErrEmptyUsername),
		errors.Is(err, apperrors.ErrEmptyQuestion),
		errors.Is(err, apperrors.ErrBadTemperature),
		errors.Is(err, apperrors.ErrNoModels),
		errors.Is(err, apperrors.ErrTooManyModels):
		return "invalid_request", true
	case errors.Is(err, apperrors.ErrUnknownModel):
		return "unknown_model", true
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found", true
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden", true
	}
	return "", false
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
)

// ApiResponse is the envelope for successful JSON responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// errorStatus maps service errors to an HTTP status and error code.
// Unrecognized errors are internal.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrUnknownModel):
		return http.StatusBadRequest, "unknown_model"
	case errors.Is(err, apperrors.ErrInvalidScore):
		return http.StatusBadRequest, "invalid_score"
	case errors.Is(err, apperrors.ErrEmptyUsername),
		errors.Is(err, apperrors.ErrEmptyQuestion),
		errors.Is(err, apperrors.ErrBadTemperature),
		errors.Is(err, apperrors.ErrNoModels),
		errors.Is(err, apperrors.ErrTooManyModels):
		return http.StatusBadRequest, "invalid_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeServiceError writes the mapped error response. Internal errors are
// logged with msg; their detail is not sent to the client.
func writeServiceError(w http.ResponseWriter, err error, msg string, logger *zap.Logger) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
		message = msg
	}
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// badRequest writes a 400 with the invalid_request code.
func badRequest(w http.ResponseWriter, message string, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

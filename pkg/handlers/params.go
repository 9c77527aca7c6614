package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ParseConversationID extracts and validates the conversation ID from the
// request path. Returns false after writing an error response.
// Expects path parameter: cid
func ParseConversationID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "cid", "invalid_conversation_id", "Invalid conversation ID", logger)
}

// ParseResponseID extracts and validates the response ID from the request
// path. Returns false after writing an error response.
// Expects path parameter: rid
func ParseResponseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "rid", "invalid_response_id", "Invalid response ID", logger)
}

// parseQueryInt reads an optional integer query parameter. Missing or
// malformed values yield 0, which the services replace with their default.
func parseQueryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// parseID is the internal helper that does the actual parsing work.
// Database IDs are positive.
func parseID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(pathParam), 10, 64)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
)

func TestRegisterMetricsRoute(t *testing.T) {
	metrics.ObserveHTTP(http.MethodGet, "GET /api/catalog", "200", 0.01)

	rec := serve(RegisterMetricsRoute, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "smartcourt_http_request_seconds")
}

// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartcourt"

var (
	modelLatencyMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_invocation_seconds",
		Help:      "Wall-clock seconds per model invocation, successful or not",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
	}, []string{"model", "outcome"})

	modelCostMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_cost_total",
		Help:      "Estimated cost of model invocations in the configured currency",
	}, []string{"model"})

	modelErrorMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_invocation_errors_total",
		Help:      "Model invocations that produced an error answer",
	}, []string{"model", "type"})

	retrievalFailureMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrieval_failures_total",
		Help:      "Knowledge base retrievals that failed and fell back to empty context",
	})

	suggestionFailureMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestion_failures_total",
		Help:      "Follow-up suggestion calls that returned no suggestions because of an error",
	})

	persistFailureMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "turn_persist_failures_total",
		Help:      "Conversation turns whose results were returned but not saved",
	})

	httpRequestMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_seconds",
		Help:      "HTTP request duration by route pattern and status code",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	mcpToolMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mcp_tool_call_seconds",
		Help:      "MCP tool call duration by tool and outcome",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"tool", "outcome"})

	activeSessionsMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Display-name sessions currently alive",
	})
)

// ObserveInvocation records one model call.
func ObserveInvocation(model string, seconds, cost float64, errType string) {
	outcome := "success"
	if errType != "" {
		outcome = "error"
		modelErrorMetric.WithLabelValues(model, errType).Inc()
	}
	modelLatencyMetric.WithLabelValues(model, outcome).Observe(seconds)
	modelCostMetric.WithLabelValues(model).Add(cost)
}

// RetrievalFailed counts a retrieval that degraded to empty context.
func RetrievalFailed() { retrievalFailureMetric.Inc() }

// SuggestionFailed counts a suggestion call that degraded to an empty list.
func SuggestionFailed() { suggestionFailureMetric.Inc() }

// PersistFailed counts a turn that could not be saved.
func PersistFailed() { persistFailureMetric.Inc() }

// ObserveHTTP records one served request.
func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequestMetric.WithLabelValues(method, route, status).Observe(seconds)
}

// ObserveMCPTool records one MCP tool call. outcome is "success" or "error".
func ObserveMCPTool(tool, outcome string, seconds float64) {
	mcpToolMetric.WithLabelValues(tool, outcome).Observe(seconds)
}

// SetActiveSessions publishes the live session count.
func SetActiveSessions(n int) { activeSessionsMetric.Set(float64(n)) }

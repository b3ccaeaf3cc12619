package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "askdb_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_questions_total",
			Help: "Total number of dispatched questions by outcome.",
		},
		[]string{"outcome"},
	)

	questionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "askdb_question_duration_seconds",
			Help:    "End-to-end latency of a question round trip through the agent.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
	)

	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_agent_tool_calls_total",
			Help: "Total number of agent tool invocations.",
		},
		[]string{"tool", "status"},
	)

	schemaFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_schema_fetch_total",
			Help: "Total number of schema introspections by outcome.",
		},
		[]string{"outcome"},
	)

	schemaFetchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "askdb_schema_fetch_duration_seconds",
			Help:    "Schema introspection latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		questionsTotal,
		questionDurationSeconds,
		toolCallsTotal,
		schemaFetchTotal,
		schemaFetchDurationSeconds,
	)
}

func ObserveQuestion(outcome string, elapsed time.Duration) {
	questionsTotal.WithLabelValues(outcome).Inc()
	questionDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveToolCall(tool, status string) {
	toolCallsTotal.WithLabelValues(tool, status).Inc()
}

func ObserveSchemaFetch(outcome string, elapsed time.Duration) {
	schemaFetchTotal.WithLabelValues(outcome).Inc()
	schemaFetchDurationSeconds.Observe(elapsed.Seconds())
}

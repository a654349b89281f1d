package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxtriage_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uxtriage_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Conversation metrics
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxtriage_turns_total",
			Help: "Total conversation turns by outcome",
		},
		[]string{"outcome"}, // "answered", "oracle_error", "loop_limit"
	)

	OracleInvocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uxtriage_oracle_invocations_total",
			Help: "Total reasoning model invocations",
		},
	)

	ToolDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxtriage_tool_dispatches_total",
			Help: "Total tool dispatches",
		},
		[]string{"tool", "outcome"}, // outcome: "ok" or "error"
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uxtriage_search_queries_total",
			Help: "Total issue store searches",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uxtriage_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	StoreQueryLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uxtriage_store_query_latency_seconds",
			Help:    "Issue store query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
	)

	OracleLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uxtriage_oracle_latency_seconds",
			Help:    "Reasoning model call latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

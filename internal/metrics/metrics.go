// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AskRequests counts assistant requests by outcome
	// (ok, empty_question, synthesis_failure, invalid_query, execution_failure).
	AskRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdash_ask_requests_total",
			Help: "Natural-language query requests by outcome",
		},
		[]string{"outcome"},
	)

	// AskDuration measures end-to-end latency of assistant requests.
	AskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socialdash_ask_duration_seconds",
			Help:    "Latency of natural-language query requests",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
	)

	// QueryRows observes the size of executed assistant result sets.
	QueryRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socialdash_query_rows",
			Help:    "Rows returned by read-only assistant queries",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// AnalysisFallbacks counts analyses replaced with the fallback text.
	AnalysisFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socialdash_analysis_fallbacks_total",
			Help: "Narrative analyses that failed and were replaced by the fallback text",
		},
	)

	// LLMRequests counts model calls by provider and status.
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdash_llm_requests_total",
			Help: "Language model calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "socialdash_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// SuspiciousInput counts search inputs flagged as SQL injection attempts.
	SuspiciousInput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdash_suspicious_input_total",
			Help: "User inputs fingerprinted as SQL injection",
		},
		[]string{"source"},
	)

	// PostsImported counts CSV import results.
	PostsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialdash_posts_imported_total",
			Help: "Posts processed by the CSV importer by result",
		},
		[]string{"result"},
	)
)

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	PipelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidrank_pipeline_requests_total",
			Help: "Total number of ranking pipeline invocations",
		},
		[]string{"pipeline", "status"}, // status: "success", "error", "cold_start"
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidrank_pipeline_duration_seconds",
			Help:    "End-to-end ranking pipeline latency in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"pipeline"},
	)

	RecallCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidrank_recall_candidates",
			Help:    "Number of hits returned by the dense index per request",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250},
		},
		[]string{"pipeline"},
	)

	RecallSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidrank_recall_skipped_total",
			Help: "Total number of recall hits dropped during candidate assembly",
		},
		[]string{"reason"}, // "stale", "non_video", "duplicate", "error"
	)

	SignalFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidrank_signal_fallbacks_total",
			Help: "Total number of signals replaced by a safe default after a failure",
		},
		[]string{"signal"}, // "encoder", "cross_encoder"
	)

	// External Service Metrics
	ExternalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidrank_external_requests_total",
			Help: "Total number of calls to external inference services",
		},
		[]string{"service", "status"},
	)

	ExternalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidrank_external_request_duration_seconds",
			Help:    "Latency of external inference service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidrank_embedding_cache_lookups_total",
			Help: "Total number of embedding cache lookups",
		},
		[]string{"tier", "result"},
	)

	// Index Metrics
	IndexVectors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidrank_index_vectors",
			Help: "Number of vectors loaded into the dense index",
		},
	)
)

// RecordPipeline records one pipeline invocation.
func RecordPipeline(pipeline, status string, duration time.Duration, recalled int) {
	PipelineRequests.WithLabelValues(pipeline, status).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
	if recalled >= 0 {
		RecallCandidates.WithLabelValues(pipeline).Observe(float64(recalled))
	}
}

// RecordExternalCall records a call to an inference service.
func RecordExternalCall(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExternalRequests.WithLabelValues(service, status).Inc()
	ExternalDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordCacheLookup records an embedding cache lookup on the given tier.
func RecordCacheLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EmbeddingCacheLookups.WithLabelValues(tier, result).Inc()
}

// WriteTextfile writes every metric of the default registry to path in the
// Prometheus text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

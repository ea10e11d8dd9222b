// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

/*
Package metrics provides Prometheus instrumentation for the ranking pipelines.

# Overview

The package provides metrics for:
  - Search and feed pipeline throughput and latency
  - Dense recall sizes and skipped candidates
  - Degraded signals (encoder fallback vectors, cross-encoder zeros)
  - Calls to the external inference services
  - Circuit breaker state transitions
  - Embedding cache hit/miss rates

# Export

vidrank runs as a one-shot command, so metrics are not served over HTTP.
WriteTextfile dumps the default registry in Prometheus text format, which is
the layout the node_exporter textfile collector expects:

	vidrank search "go concurrency" --metrics-out /var/lib/node_exporter/vidrank.prom

# Available Metrics

Pipeline Metrics:
  - vidrank_pipeline_requests_total: Pipeline invocations (counter)
    Labels: pipeline, status
  - vidrank_pipeline_duration_seconds: End-to-end latency (histogram)
    Labels: pipeline
  - vidrank_recall_candidates: Hits returned by the dense index (histogram)
    Labels: pipeline
  - vidrank_recall_skipped_total: Recall hits dropped during assembly (counter)
    Labels: reason (stale, non_video, duplicate, error)
  - vidrank_signal_fallbacks_total: Degraded signals (counter)
    Labels: signal (encoder, cross_encoder)

External Service Metrics:
  - vidrank_external_requests_total: Calls to inference services (counter)
    Labels: service, status
  - vidrank_external_request_duration_seconds: Call latency (histogram)
    Labels: service

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Requests by result (counter)
  - circuit_breaker_consecutive_failures: Current failure streak (gauge)
  - circuit_breaker_state_transitions_total: State changes (counter)

Cache Metrics:
  - vidrank_embedding_cache_lookups_total: Cache lookups (counter)
    Labels: tier (memory, disk), result (hit, miss)

Index Metrics:
  - vidrank_index_vectors: Vectors loaded into the dense index (gauge)
*/
package metrics

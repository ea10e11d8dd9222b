// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

/*
Package inference provides clients for the text embedding and cross-encoder
services used by the ranking engine.

# Clients

  - HTTPEncoder: posts texts to a HuggingFace-style ({"inputs": [...]}) or
    Ollama-style ({"model": ..., "input": [...]}) endpoint and reads
    {"embeddings": [[...], ...]}
  - HTTPCrossEncoder: posts {"inputs": [[query, text]]} and reads the first
    score of the response
  - CachedEncoder: two-tier cache in front of any encoder; an in-memory LRU
    backed by a BadgerDB store with per-entry TTL
  - FallbackEncoder: replaces failed encodings with seeded random vectors so
    a request can still be served

Both HTTP clients run behind a sony/gobreaker circuit breaker that exports
state and transition metrics. The cross-encoder client can be rate limited
with golang.org/x/time/rate.

# Composition

The usual chain is:

	FallbackEncoder -> CachedEncoder -> HTTPEncoder

so that random fallback vectors are never written to the cache.
*/
package inference

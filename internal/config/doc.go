// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

/*
Package config provides centralized configuration management for vidrank.

Configuration is loaded with Koanf v2 from three layers, later layers winning:

 1. Defaults: built-in values from defaultConfig
 2. Config file: optional YAML (config.yaml, CONFIG_PATH, or an explicit path)
 3. Environment variables: an explicit allow-list mapped to config keys

# Environment Variables

Inference services:
  - EMBEDDING_API: embedding endpoint URL
  - EMBEDDING_PROVIDER: huggingface or ollama (default: huggingface)
  - EMBEDDING_MODEL: model name sent to ollama
  - HF_API_KEY: bearer token for the embedding endpoint
  - EMBEDDING_FALLBACK: use random vectors when the endpoint fails (default: true)
  - EMBEDDING_CACHE_PATH: badger directory for cached embeddings (empty: memory only)
  - CROSS_ENCODER_API: cross-encoder endpoint URL
  - CROSS_ENCODER_RATE_LIMIT: requests per second (0: unlimited)

Storage:
  - DUCKDB_PATH: database file (default: ./data/vidrank.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
  - INDEX_DIM: embedding dimension (default: 512)

Ranking:
  - RANKING_DIVERSITY_PENALTY: MMR redundancy penalty (default: 0.7)
  - RANKING_EMBEDDING_POLICY: primary, latest or first (default: primary)
  - RANKING_QUERY_SIMILARITY: none or legacy (default: none)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file and line (default: false)

# Validation

Load validates struct tags through the validation package and then runs
cross-field checks, including the ranking configuration's own Validate.
*/
package config

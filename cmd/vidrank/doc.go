// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package main is the vidrank command line tool.
//
// Vidrank ranks short videos for two entry points: free-text search and a
// personalized feed. Both pipelines recall candidates from a dense index of
// video embeddings, score them with a cross-encoder, cosine similarity and a
// lattice-aware lexical match, and diversify the slate with MMR.
//
// # Commands
//
//	vidrank ingest fixture.json [--embed-missing]
//	vidrank search "knife skills" [-k 10]
//	vidrank feed 42 [-k 20]
//	vidrank version
//
// Each command opens the DuckDB store, builds the index from stored video
// embeddings and writes its result to stdout as JSON.
//
// # Initialization Order
//
//  1. Configuration: defaults, config file (--config or CONFIG_PATH), environment
//  2. Logging: zerolog level and format from the configuration
//  3. Database: DuckDB metadata store
//  4. Encoder: HTTP encoder, embedding cache and random fallback
//  5. Index: flat inner-product index over video embeddings
//  6. Engine: cross-encoder client, MMR diversifier and ranking weights
//
// # Configuration
//
// Common environment variables:
//
//	DUCKDB_PATH=./data/vidrank.duckdb
//	EMBEDDING_API=http://localhost:11434/api/embed
//	EMBEDDING_PROVIDER=ollama
//	CROSS_ENCODER_API=http://localhost:8000/cross-encoder
//	HF_API_KEY=...
//	LOG_LEVEL=debug
//
// # Metrics
//
// With --metrics-out, the Prometheus registry is written to a textfile after
// the command finishes, for node_exporter's textfile collector.
package main

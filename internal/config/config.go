// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package config

import (
	"time"
)

// Embedding endpoint wire formats.
const (
	// ProviderHuggingFace posts {"inputs": [...]} and reads {"embeddings": [...]}.
	ProviderHuggingFace = "huggingface"

	// ProviderOllama posts {"model": ..., "input": [...]} to /api/embed.
	ProviderOllama = "ollama"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Categories:
//
//  1. Storage:
//     - Database: DuckDB metadata store
//     - Index: dense index dimension
//
//  2. Inference:
//     - Encoder: text embedding endpoint, fallback and cache
//     - CrossEncoder: relevance scoring endpoint and rate limit
//     - Breaker: circuit breaker shared by both endpoints
//
//  3. Ranking: composite score weights, recall sizes and limits
//
//  4. Observability:
//     - Logging: log levels and output formats
//
// Config is immutable after Load and safe for concurrent read access.
type Config struct {
	Database     DatabaseConfig     `koanf:"database"`
	Index        IndexConfig        `koanf:"index"`
	Encoder      EncoderConfig      `koanf:"encoder"`
	CrossEncoder CrossEncoderConfig `koanf:"cross_encoder"`
	Breaker      BreakerConfig      `koanf:"breaker"`
	Ranking      RankingConfig      `koanf:"ranking"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	// Default: ./data/vidrank.duckdb
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is the DuckDB memory limit, e.g. "2GB".
	// Default: 2GB
	MaxMemory string `koanf:"max_memory" validate:"required"`

	// Threads is the number of DuckDB threads (0 = use NumCPU).
	Threads int `koanf:"threads" validate:"gte=0"`
}

// IndexConfig holds dense index settings.
type IndexConfig struct {
	// Dim is the embedding dimension. Stored embeddings of another
	// dimension are skipped when the index is built.
	// Default: 512
	Dim int `koanf:"dim" validate:"min=1"`
}

// EncoderConfig holds text embedding settings.
type EncoderConfig struct {
	// Provider selects the request format: huggingface or ollama.
	// Default: huggingface
	Provider string `koanf:"provider" validate:"oneof=huggingface ollama"`

	// URL is the embedding endpoint. Empty disables remote encoding, in which
	// case Fallback must be enabled.
	URL string `koanf:"url" validate:"omitempty,http_url"`

	// Model is sent with ollama requests.
	// Default: nomic-embed-text
	Model string `koanf:"model" validate:"required_if=Provider ollama"`

	// APIKey is sent as a bearer token when set.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single embedding request.
	// Default: 10s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// Fallback replaces failed encodings with random vectors instead of
	// returning an error.
	// Default: true
	Fallback bool `koanf:"fallback"`

	// FallbackSeed seeds the fallback generator. 0 uses the current time.
	FallbackSeed int64 `koanf:"fallback_seed"`

	// Cache configures the embedding cache.
	Cache EncoderCacheConfig `koanf:"cache"`
}

// EncoderCacheConfig configures the two-tier embedding cache.
type EncoderCacheConfig struct {
	// Enabled turns the cache on.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// Size is the number of vectors held in memory.
	// Default: 4096
	Size int `koanf:"size" validate:"min=1"`

	// TTL is how long a cached vector stays valid.
	// Default: 24h
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`

	// Path is the badger directory for the persistent tier.
	// Empty keeps the persistent tier in memory.
	Path string `koanf:"path"`
}

// CrossEncoderConfig holds relevance scoring settings.
type CrossEncoderConfig struct {
	// URL is the cross-encoder endpoint.
	// Default: http://localhost:8000/cross-encoder
	URL string `koanf:"url" validate:"required,http_url"`

	// Timeout bounds a single scoring request.
	// Default: 5s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the maximum requests per second (0 = unlimited).
	// Default: 0
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	// Burst is the rate limiter bucket size.
	// Default: 8
	Burst int `koanf:"burst" validate:"min=1"`
}

// BreakerConfig holds circuit breaker settings for the inference clients.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed when half-open.
	// Default: 3
	MaxRequests uint32 `koanf:"max_requests" validate:"min=1"`

	// Interval is the cyclic period for clearing counts while closed.
	// Default: 1m
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// Timeout is how long the breaker stays open before half-opening.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests is the number of requests seen before the failure ratio
	// can trip the breaker.
	// Default: 10
	MinRequests uint32 `koanf:"min_requests" validate:"min=1"`

	// FailureRatio trips the breaker when reached.
	// Default: 0.6
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// RankingConfig holds ranking engine settings.
type RankingConfig struct {
	// Alpha weighs the cross-encoder score.
	// Default: 1
	Alpha float64 `koanf:"alpha" validate:"gte=0"`

	// Beta weighs anchor to candidate cosine similarity.
	// Default: 1
	Beta float64 `koanf:"beta" validate:"gte=0"`

	// Delta weighs the query similarity term.
	// Default: 1
	Delta float64 `koanf:"delta" validate:"gte=0"`

	// Gamma weighs the lexical match score.
	// Default: 1
	Gamma float64 `koanf:"gamma" validate:"gte=0"`

	// ExactBoost is added when any lexical evidence exists.
	// Default: 3
	ExactBoost float64 `koanf:"exact_boost" validate:"gte=0"`

	// DiversityPenalty scales the MMR redundancy penalty.
	// Default: 0.7
	DiversityPenalty float64 `koanf:"diversity_penalty" validate:"gte=0"`

	// SearchRecall is the dense recall size for search.
	// Default: 50
	SearchRecall int `koanf:"search_recall" validate:"min=1"`

	// FeedRecall is the dense recall size for feeds.
	// Default: 100
	FeedRecall int `koanf:"feed_recall" validate:"min=1"`

	// DefaultK is used when a request does not set K.
	// Default: 12
	DefaultK int `koanf:"default_k" validate:"min=1"`

	// MaxK caps requested K.
	// Default: 100
	MaxK int `koanf:"max_k" validate:"gtefield=DefaultK"`

	// LookupConcurrency bounds concurrent store lookups per request.
	// Default: 8
	LookupConcurrency int `koanf:"lookup_concurrency" validate:"min=1"`

	// ScoreConcurrency bounds concurrent cross-encoder calls per request.
	// Default: 4
	ScoreConcurrency int `koanf:"score_concurrency" validate:"min=1"`

	// EmbeddingPolicy picks a user's embedding: primary, latest or first.
	// Default: primary
	EmbeddingPolicy string `koanf:"embedding_policy" validate:"oneof=primary latest first"`

	// QuerySimilarity selects the delta term: none or legacy.
	// Default: none
	QuerySimilarity string `koanf:"query_similarity" validate:"oneof=none legacy"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

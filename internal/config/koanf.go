// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/vidrank/internal/validation"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vidrank/config.yaml",
	"/etc/vidrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "./data/vidrank.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // NumCPU
		},
		Index: IndexConfig{
			Dim: 512,
		},
		Encoder: EncoderConfig{
			Provider: ProviderHuggingFace,
			URL:      "",
			Model:    "nomic-embed-text",
			Timeout:  10 * time.Second,
			Fallback: true, // random vectors keep the pipeline usable without an endpoint
			Cache: EncoderCacheConfig{
				Enabled: true,
				Size:    4096,
				TTL:     24 * time.Hour,
			},
		},
		CrossEncoder: CrossEncoderConfig{
			URL:     "http://localhost:8000/cross-encoder",
			Timeout: 5 * time.Second,
			Burst:   8,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Ranking: RankingConfig{
			Alpha:             1,
			Beta:              1,
			Delta:             1,
			Gamma:             1,
			ExactBoost:        3,
			DiversityPenalty:  0.7,
			SearchRecall:      50,
			FeedRecall:        100,
			DefaultK:          12,
			MaxK:              100,
			LookupConcurrency: 8,
			ScoreConcurrency:  4,
			EmbeddingPolicy:   "primary",
			QuerySimilarity:   "none",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: path if non-empty, otherwise the first of CONFIG_PATH and DefaultConfigPaths that exists
//  3. Environment Variables: Override any mapped setting
//
// An explicit path that cannot be read is an error; a missing default file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	return defaultConfig()
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Encoder.URL == "" && !c.Encoder.Fallback {
		return errors.New("encoder.url is required when encoder.fallback is disabled")
	}
	if c.Database.Path != ":memory:" && strings.HasSuffix(c.Database.Path, "/") {
		return fmt.Errorf("database.path must be a file, got directory %q", c.Database.Path)
	}

	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Index mappings
	"index_dim": "index.dim",

	// Encoder mappings
	"embedding_api":        "encoder.url",
	"embedding_provider":   "encoder.provider",
	"embedding_model":      "encoder.model",
	"hf_api_key":           "encoder.api_key",
	"embedding_timeout":    "encoder.timeout",
	"embedding_fallback":   "encoder.fallback",
	"embedding_seed":       "encoder.fallback_seed",
	"embedding_cache":      "encoder.cache.enabled",
	"embedding_cache_size": "encoder.cache.size",
	"embedding_cache_ttl":  "encoder.cache.ttl",
	"embedding_cache_path": "encoder.cache.path",

	// Cross-encoder mappings
	"cross_encoder_api":        "cross_encoder.url",
	"cross_encoder_timeout":    "cross_encoder.timeout",
	"cross_encoder_rate_limit": "cross_encoder.rate_limit",
	"cross_encoder_burst":      "cross_encoder.burst",

	// Circuit breaker mappings
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Ranking mappings
	"ranking_alpha":              "ranking.alpha",
	"ranking_beta":               "ranking.beta",
	"ranking_delta":              "ranking.delta",
	"ranking_gamma":              "ranking.gamma",
	"ranking_exact_boost":        "ranking.exact_boost",
	"ranking_diversity_penalty":  "ranking.diversity_penalty",
	"ranking_search_recall":      "ranking.search_recall",
	"ranking_feed_recall":        "ranking.feed_recall",
	"ranking_default_k":          "ranking.default_k",
	"ranking_max_k":              "ranking.max_k",
	"ranking_lookup_concurrency": "ranking.lookup_concurrency",
	"ranking_score_concurrency":  "ranking.score_concurrency",
	"ranking_embedding_policy":   "ranking.embedding_policy",
	"ranking_query_similarity":   "ranking.query_similarity",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - CROSS_ENCODER_API -> cross_encoder.url
//   - HF_API_KEY -> encoder.api_key
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"fmt"
	"math"

	"github.com/tomtom215/vidrank/internal/models"
)

// QuerySimilarityMode selects how the Delta term of the composite score is computed.
type QuerySimilarityMode string

const (
	// QuerySimilarityNone drops the Delta term.
	QuerySimilarityNone QuerySimilarityMode = "none"

	// QuerySimilarityLegacy reproduces the historical behaviour where the term
	// is the candidate vector's similarity to itself, a constant close to 1.
	// It shifts every score equally and never changes the order.
	QuerySimilarityLegacy QuerySimilarityMode = "legacy"
)

// Valid reports whether m is a known mode.
func (m QuerySimilarityMode) Valid() bool {
	return m == QuerySimilarityNone || m == QuerySimilarityLegacy
}

// Config contains all configuration for the ranking engine.
type Config struct {
	// Weights are the composite score coefficients.
	Weights Weights `json:"weights"`

	// Diversity contains parameters for diversification.
	Diversity DiversityConfig `json:"diversity"`

	// Recall contains dense recall sizes.
	Recall RecallConfig `json:"recall"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// EmbeddingPolicy picks the user embedding when several are stored.
	// Default: primary.
	EmbeddingPolicy models.SelectionPolicy `json:"embedding_policy"`

	// QuerySimilarity controls the Delta term.
	// Default: none.
	QuerySimilarity QuerySimilarityMode `json:"query_similarity"`
}

// Weights are the coefficients of the composite score.
type Weights struct {
	// Alpha weighs the cross-encoder relevance score.
	// Default: 1.
	Alpha float64 `json:"alpha"`

	// Beta weighs the cosine similarity between anchor and candidate.
	// Default: 1.
	Beta float64 `json:"beta"`

	// Delta weighs the query similarity term.
	// Default: 1.
	Delta float64 `json:"delta"`

	// Gamma weighs the lexical match score.
	// Default: 1.
	Gamma float64 `json:"gamma"`

	// ExactBoost is added once when the lexical score is positive.
	// Default: 3.
	ExactBoost float64 `json:"exact_boost"`
}

// Combine applies the weights to a signal breakdown.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Combine(s Signals) float64 {
	return w.Alpha*s.Cross +
		w.Beta*s.Cosine +
		w.Delta*s.QuerySimilarity +
		w.Gamma*s.Lexical +
		w.ExactBoost*s.Exact
}

// DiversityConfig contains parameters for diversification.
type DiversityConfig struct {
	// Penalty scales the redundancy penalty in MMR selection.
	// 0 disables diversification and keeps pure score order.
	// Default: 0.7.
	Penalty float64 `json:"penalty"`
}

// RecallConfig contains dense recall sizes. They should exceed the largest K
// requested so diversification has a pool to choose from.
type RecallConfig struct {
	// SearchN is the recall size for text search.
	// Default: 50.
	SearchN int `json:"search_n"`

	// FeedN is the recall size for feeds.
	// Default: 100.
	FeedN int `json:"feed_n"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the number of results when a request does not set K.
	// Default: 12.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k"`

	// LookupConcurrency bounds concurrent per-candidate store lookups.
	// Default: 8.
	LookupConcurrency int `json:"lookup_concurrency"`

	// ScoreConcurrency bounds concurrent cross-encoder calls per request.
	// Default: 4.
	ScoreConcurrency int `json:"score_concurrency"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Alpha:      1,
			Beta:       1,
			Delta:      1,
			Gamma:      1,
			ExactBoost: 3,
		},
		Diversity: DiversityConfig{
			Penalty: 0.7,
		},
		Recall: RecallConfig{
			SearchN: 50,
			FeedN:   100,
		},
		Limits: LimitsConfig{
			DefaultK:          12,
			MaxK:              100,
			LookupConcurrency: 8,
			ScoreConcurrency:  4,
		},
		EmbeddingPolicy: models.SelectPrimary,
		QuerySimilarity: QuerySimilarityNone,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	weights := map[string]float64{
		"alpha":       c.Weights.Alpha,
		"beta":        c.Weights.Beta,
		"delta":       c.Weights.Delta,
		"gamma":       c.Weights.Gamma,
		"exact_boost": c.Weights.ExactBoost,
	}
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("weights.%s must be a non-negative number, got %f", name, w)
		}
	}

	if math.IsNaN(c.Diversity.Penalty) || math.IsInf(c.Diversity.Penalty, 0) || c.Diversity.Penalty < 0 {
		return fmt.Errorf("diversity.penalty must be finite and non-negative, got %f", c.Diversity.Penalty)
	}

	if c.Recall.SearchN < 1 {
		return fmt.Errorf("recall.search_n must be positive, got %d", c.Recall.SearchN)
	}
	if c.Recall.FeedN < 1 {
		return fmt.Errorf("recall.feed_n must be positive, got %d", c.Recall.FeedN)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k (%d) must be >= limits.default_k (%d)", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.LookupConcurrency < 1 {
		return fmt.Errorf("limits.lookup_concurrency must be positive, got %d", c.Limits.LookupConcurrency)
	}
	if c.Limits.ScoreConcurrency < 1 {
		return fmt.Errorf("limits.score_concurrency must be positive, got %d", c.Limits.ScoreConcurrency)
	}

	if !c.EmbeddingPolicy.Valid() {
		return fmt.Errorf("embedding_policy must be one of primary, latest, first, got %q", c.EmbeddingPolicy)
	}
	if !c.QuerySimilarity.Valid() {
		return fmt.Errorf("query_similarity must be one of none, legacy, got %q", c.QuerySimilarity)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// all nested structs contain only value types
	clone := *c
	return &clone
}

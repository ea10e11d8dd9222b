// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	w := cfg.Weights
	if w.Alpha != 1 || w.Beta != 1 || w.Delta != 1 || w.Gamma != 1 || w.ExactBoost != 3 {
		t.Errorf("Weights = %+v, want alpha=beta=delta=gamma=1 exact_boost=3", w)
	}
	if cfg.Diversity.Penalty != 0.7 {
		t.Errorf("Diversity.Penalty = %v, want 0.7", cfg.Diversity.Penalty)
	}
	if cfg.Recall.SearchN != 50 || cfg.Recall.FeedN != 100 {
		t.Errorf("Recall = %+v, want search 50 feed 100", cfg.Recall)
	}
	if cfg.Limits.DefaultK != 12 {
		t.Errorf("Limits.DefaultK = %d, want 12", cfg.Limits.DefaultK)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative alpha", func(c *Config) { c.Weights.Alpha = -1 }},
		{"NaN gamma", func(c *Config) { c.Weights.Gamma = math.NaN() }},
		{"infinite boost", func(c *Config) { c.Weights.ExactBoost = math.Inf(1) }},
		{"negative penalty", func(c *Config) { c.Diversity.Penalty = -0.1 }},
		{"NaN penalty", func(c *Config) { c.Diversity.Penalty = math.NaN() }},
		{"infinite penalty", func(c *Config) { c.Diversity.Penalty = math.Inf(1) }},
		{"zero search recall", func(c *Config) { c.Recall.SearchN = 0 }},
		{"zero feed recall", func(c *Config) { c.Recall.FeedN = 0 }},
		{"zero default k", func(c *Config) { c.Limits.DefaultK = 0 }},
		{"max k below default", func(c *Config) { c.Limits.MaxK = 5 }},
		{"zero lookup concurrency", func(c *Config) { c.Limits.LookupConcurrency = 0 }},
		{"zero score concurrency", func(c *Config) { c.Limits.ScoreConcurrency = 0 }},
		{"unknown policy", func(c *Config) { c.EmbeddingPolicy = "random" }},
		{"unknown query similarity", func(c *Config) { c.QuerySimilarity = "learned" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.Alpha = 9
	clone.Limits.MaxK = 7

	if cfg.Weights.Alpha != 1 || cfg.Limits.MaxK != 100 {
		t.Error("Clone() shares state with original")
	}
}

func TestWeights_Combine(t *testing.T) {
	w := Weights{Alpha: 2, Beta: 3, Delta: 5, Gamma: 7, ExactBoost: 11}
	s := Signals{Cross: 1, Cosine: 1, QuerySimilarity: 1, Lexical: 1, Exact: 1}
	if got := w.Combine(s); got != 28 {
		t.Errorf("Combine() = %v, want 28", got)
	}
}

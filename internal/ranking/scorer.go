// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
)

// ScoreInput carries everything the composite score depends on.
type ScoreInput struct {
	// Anchor is the query vector for search or the user vector for feeds.
	Anchor models.Vector

	// QueryText is empty on the feed path.
	QueryText string

	Candidate models.Vector

	// SegmentText is the best segment's text. Empty skips the cross-encoder.
	SegmentText string

	Lexical float64
}

// Scorer computes the multi-signal composite score of a candidate.
// It is safe for concurrent use when its CrossEncoder is.
type Scorer struct {
	cross   CrossEncoder
	weights Weights
	mode    QuerySimilarityMode
	logger  zerolog.Logger
}

// NewScorer creates a scorer. A nil cross encoder contributes 0.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScorer(cross CrossEncoder, weights Weights, mode QuerySimilarityMode, logger zerolog.Logger) *Scorer {
	if mode == "" {
		mode = QuerySimilarityNone
	}
	return &Scorer{
		cross:   cross,
		weights: weights,
		mode:    mode,
		logger:  logger.With().Str("component", "scorer").Logger(),
	}
}

// ScoreVideo returns the composite score and its per-signal breakdown.
// Cross-encoder failures are logged and scored as 0.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (s *Scorer) ScoreVideo(ctx context.Context, in ScoreInput) (float64, Signals) {
	sig := Signals{
		Cross:   s.crossScore(ctx, in.QueryText, in.SegmentText),
		Cosine:  CosineSimilarity(in.Anchor, in.Candidate),
		Lexical: in.Lexical,
	}
	if s.mode == QuerySimilarityLegacy {
		sig.QuerySimilarity = CosineSimilarity(in.Candidate, in.Candidate)
	}
	if in.Lexical > 0 {
		sig.Exact = 1
	}
	return s.weights.Combine(sig), sig
}

func (s *Scorer) crossScore(ctx context.Context, query, text string) float64 {
	if text == "" || s.cross == nil {
		return 0
	}
	score, err := s.cross.Score(ctx, query, text)
	if err != nil {
		metrics.SignalFallbacks.WithLabelValues("cross_encoder").Inc()
		s.logger.Warn().Err(err).Msg("cross-encoder failed, scoring as 0")
		return 0
	}
	return score
}

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/models"
)

func TestScorer_ScoreVideo(t *testing.T) {
	anchor := models.Vector{1, 0}
	same := models.Vector{2, 0}
	orth := models.Vector{0, 1}

	tests := []struct {
		name      string
		weights   Weights
		in        ScoreInput
		crossHits map[string]float64
		want      float64
	}{
		{
			name:    "all signals with default weights",
			weights: DefaultConfig().Weights,
			in: ScoreInput{
				Anchor: anchor, QueryText: "go", Candidate: same,
				SegmentText: "learn go", Lexical: 0.5,
			},
			crossHits: map[string]float64{"learn go": 2},
			// 2 + 1 + 0 + 0.5 + 3
			want: 6.5,
		},
		{
			name:    "no lexical match means no boost",
			weights: DefaultConfig().Weights,
			in: ScoreInput{
				Anchor: anchor, QueryText: "go", Candidate: same,
				SegmentText: "rust", Lexical: 0,
			},
			crossHits: map[string]float64{"rust": -1},
			want:      0,
		},
		{
			name:    "custom weights",
			weights: Weights{Alpha: 0.5, Beta: 2, Gamma: 4, ExactBoost: 1},
			in: ScoreInput{
				Anchor: anchor, Candidate: orth,
				SegmentText: "x", Lexical: 0.25,
			},
			crossHits: map[string]float64{"x": 4},
			// 0.5*4 + 2*0 + 4*0.25 + 1
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cross := &mockCross{scores: tt.crossHits}
			s := NewScorer(cross, tt.weights, QuerySimilarityNone, zerolog.Nop())
			got, _ := s.ScoreVideo(context.Background(), tt.in)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ScoreVideo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScorer_EmptySegmentSkipsCrossEncoder(t *testing.T) {
	cross := &mockCross{scores: map[string]float64{"": 100}}
	s := NewScorer(cross, DefaultConfig().Weights, QuerySimilarityNone, zerolog.Nop())

	_, sig := s.ScoreVideo(context.Background(), ScoreInput{
		Anchor: models.Vector{1}, QueryText: "q", Candidate: models.Vector{1},
	})
	if cross.calls.Load() != 0 {
		t.Errorf("cross-encoder calls = %d, want 0", cross.calls.Load())
	}
	if sig.Cross != 0 {
		t.Errorf("Signals.Cross = %v, want 0", sig.Cross)
	}
}

func TestScorer_CrossEncoderFailsSoft(t *testing.T) {
	cross := &mockCross{err: errors.New("503 service unavailable")}
	s := NewScorer(cross, DefaultConfig().Weights, QuerySimilarityNone, zerolog.Nop())

	got, sig := s.ScoreVideo(context.Background(), ScoreInput{
		Anchor: models.Vector{1, 0}, QueryText: "q", Candidate: models.Vector{1, 0},
		SegmentText: "text", Lexical: 1,
	})
	if cross.calls.Load() != 1 {
		t.Errorf("cross-encoder calls = %d, want 1", cross.calls.Load())
	}
	if sig.Cross != 0 {
		t.Errorf("Signals.Cross = %v, want 0", sig.Cross)
	}
	// cosine 1 + lexical 1 + boost 3
	if math.Abs(got-5) > 1e-6 {
		t.Errorf("ScoreVideo() = %v, want 5", got)
	}
}

func TestScorer_QuerySimilarityModes(t *testing.T) {
	in := ScoreInput{Anchor: models.Vector{1, 0}, Candidate: models.Vector{0, 3}}

	none := NewScorer(nil, DefaultConfig().Weights, QuerySimilarityNone, zerolog.Nop())
	legacy := NewScorer(nil, DefaultConfig().Weights, QuerySimilarityLegacy, zerolog.Nop())

	gotNone, sigNone := none.ScoreVideo(context.Background(), in)
	gotLegacy, sigLegacy := legacy.ScoreVideo(context.Background(), in)

	if sigNone.QuerySimilarity != 0 {
		t.Errorf("none: QuerySimilarity = %v, want 0", sigNone.QuerySimilarity)
	}
	if math.Abs(sigLegacy.QuerySimilarity-1) > 1e-6 {
		t.Errorf("legacy: QuerySimilarity = %v, want ~1", sigLegacy.QuerySimilarity)
	}
	if math.Abs((gotLegacy-gotNone)-1) > 1e-6 {
		t.Errorf("legacy - none = %v, want ~1", gotLegacy-gotNone)
	}
}

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package inference

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

// FallbackEncoder returns random vectors when the wrapped encoder fails or
// is absent. Components are uniform in [-0.5, 0.5).
//
// Fallback vectors carry no meaning. They keep the pipeline serving results
// (ordered mostly by cross-encoder and lexical evidence) while the embedding
// service is down.
type FallbackEncoder struct {
	next   ranking.Encoder
	dim    int
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ranking.Encoder = (*FallbackEncoder)(nil)

// NewFallbackEncoder wraps next. A nil next always produces random vectors.
// A zero seed uses the current time.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFallbackEncoder(next ranking.Encoder, dim int, seed int64, logger zerolog.Logger) *FallbackEncoder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // G404: fallback vectors are not security sensitive
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	return &FallbackEncoder{
		next:   next,
		dim:    dim,
		logger: logger.With().Str("component", "encoder_fallback").Logger(),
		rng:    rng,
	}
}

// Encode delegates to the wrapped encoder and substitutes random vectors on error.
func (f *FallbackEncoder) Encode(ctx context.Context, texts []string) ([]models.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if f.next != nil {
		vectors, err := f.next.Encode(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn().Err(err).Int("texts", len(texts)).Msg("encoder failed, using random vectors")
	}

	metrics.SignalFallbacks.WithLabelValues("encoder").Add(float64(len(texts)))
	return f.random(len(texts)), nil
}

func (f *FallbackEncoder) random(n int) []models.Vector {
	f.mu.Lock()
	defer f.mu.Unlock()

	vectors := make([]models.Vector, n)
	for i := range vectors {
		v := make(models.Vector, f.dim)
		for j := range v {
			v[j] = f.rng.Float32() - 0.5
		}
		vectors[i] = v
	}
	return vectors
}

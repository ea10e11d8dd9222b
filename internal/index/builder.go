// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package index

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
)

// EmbeddingSource lists stored embeddings of one owner type.
type EmbeddingSource interface {
	ListEmbeddings(ctx context.Context, ownerType models.OwnerType) ([]models.EmbeddingRecord, error)
}

// Build creates a FlatIP holding every video embedding of the given
// dimension, keyed by embedding record id. Records with another dimension are
// skipped and logged.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Build(ctx context.Context, src EmbeddingSource, dim int, logger zerolog.Logger) (*FlatIP, error) {
	start := time.Now()
	logger = logger.With().Str("component", "index").Logger()

	idx, err := NewFlatIP(dim)
	if err != nil {
		return nil, err
	}

	records, err := src.ListEmbeddings(ctx, models.OwnerVideo)
	if err != nil {
		return nil, fmt.Errorf("list video embeddings: %w", err)
	}

	ids := make([]int64, 0, len(records))
	vectors := make([]models.Vector, 0, len(records))
	skipped := 0
	for i := range records {
		if len(records[i].Vector) != dim {
			skipped++
			continue
		}
		ids = append(ids, records[i].ID)
		vectors = append(vectors, records[i].Vector)
	}

	if err := idx.AddWithIDs(ids, vectors); err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	metrics.IndexVectors.Set(float64(idx.Len()))

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Int("dim", dim).Msg("skipped embeddings with mismatched dimension")
	}
	logger.Info().
		Int("vectors", idx.Len()).
		Dur("duration", time.Since(start)).
		Msg("dense index built")

	return idx, nil
}

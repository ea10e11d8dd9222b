// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"context"

	"github.com/tomtom215/vidrank/internal/models"
)

// SearchHits is a dense index result ordered by descending similarity.
// IDs and Scores have the same length.
type SearchHits struct {
	IDs    []int64
	Scores []float64
}

// Len returns the number of hits.
func (h SearchHits) Len() int { return len(h.IDs) }

// DenseIndex answers top-k nearest neighbour queries over embedding records.
// IDs are embedding record IDs.
type DenseIndex interface {
	Search(ctx context.Context, query models.Vector, k int) (SearchHits, error)
}

// Encoder embeds texts. It returns exactly one vector per input text.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([]models.Vector, error)
}

// CrossEncoder scores the relevance of a (query, text) pair.
type CrossEncoder interface {
	Score(ctx context.Context, query, text string) (float64, error)
}

// MetadataStore is the read side of the video store. Lookups of absent rows
// return an error wrapping models.ErrNotFound.
type MetadataStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
	GetEmbedding(ctx context.Context, id int64) (*models.EmbeddingRecord, error)
	GetOwnerEmbedding(ctx context.Context, ownerType models.OwnerType, ownerID int64, policy models.SelectionPolicy) (*models.EmbeddingRecord, error)
	GetSegmentsForVideo(ctx context.Context, videoID int64) ([]models.Segment, error)
}

// Diversifier picks an ordered subset of at most k items.
type Diversifier interface {
	// Name returns the diversifier identifier (e.g., "mmr").
	Name() string

	// Diversify returns at most k items in selection order. Each input item
	// appears at most once. penalty scales the redundancy penalty.
	Diversify(ctx context.Context, items []RankedItem, k int, penalty float64) []RankedItem
}

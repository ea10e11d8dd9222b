// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vidrank/internal/lattice"
	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
)

// RecallOptions controls one recall pass.
type RecallOptions struct {
	// N is the number of nearest neighbours to request.
	N int

	// QueryTokens are the folded query words used to pick best segments.
	QueryTokens []string

	// BestSegment enables segment loading and best-segment selection.
	BestSegment bool
}

// RecallResult holds the assembled candidates in recall order.
type RecallResult struct {
	Candidates []Candidate

	Recalled   int
	Stale      int
	NonVideo   int
	Duplicates int
	Failed     int
}

// outcome of resolving a single recall hit
type outcome int

const (
	outcomeOK outcome = iota
	outcomeStale
	outcomeNonVideo
	outcomeFailed
)

type resolved struct {
	outcome   outcome
	candidate Candidate
}

// Assembler joins dense recall hits with stored metadata.
type Assembler struct {
	index       DenseIndex
	store       MetadataStore
	concurrency int
	logger      zerolog.Logger
}

// NewAssembler creates an assembler that runs at most concurrency lookups at once.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAssembler(index DenseIndex, store MetadataStore, concurrency int, logger zerolog.Logger) *Assembler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Assembler{
		index:       index,
		store:       store,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "assembler").Logger(),
	}
}

// Recall queries the dense index and resolves every hit to a candidate.
// Hits that no longer resolve to a video are dropped; only index failures and
// context cancellation are returned as errors.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (a *Assembler) Recall(ctx context.Context, vector models.Vector, opts RecallOptions) (*RecallResult, error) {
	hits, err := a.index.Search(ctx, vector, opts.N)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}

	slots := make([]resolved, hits.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range hits.IDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = a.resolve(gctx, hits.IDs[i], hits.Scores[i], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble candidates: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble candidates: %w", err)
	}

	result := &RecallResult{
		Recalled:   hits.Len(),
		Candidates: make([]Candidate, 0, len(slots)),
	}
	seen := make(map[int64]struct{}, len(slots))
	for _, slot := range slots {
		switch slot.outcome {
		case outcomeStale:
			result.Stale++
			continue
		case outcomeNonVideo:
			result.NonVideo++
			continue
		case outcomeFailed:
			result.Failed++
			continue
		}

		// several embeddings of one video can be recalled; the first is the closest
		if _, dup := seen[slot.candidate.Video.ID]; dup {
			result.Duplicates++
			continue
		}
		seen[slot.candidate.Video.ID] = struct{}{}
		result.Candidates = append(result.Candidates, slot.candidate)
	}

	recordSkips(result)
	if result.Stale > 0 || result.NonVideo > 0 || result.Failed > 0 {
		a.logger.Debug().
			Int("recalled", result.Recalled).
			Int("stale", result.Stale).
			Int("non_video", result.NonVideo).
			Int("failed", result.Failed).
			Msg("dropped recall hits")
	}

	return result, nil
}

//nolint:gocritic // hugeParam: opts passed by value for immutability
func (a *Assembler) resolve(ctx context.Context, embeddingID int64, score float64, opts RecallOptions) resolved {
	rec, err := a.store.GetEmbedding(ctx, embeddingID)
	if err != nil {
		return a.lookupFailure(err, "embedding", embeddingID)
	}
	if rec.OwnerType != models.OwnerVideo {
		return resolved{outcome: outcomeNonVideo}
	}

	video, err := a.store.GetVideo(ctx, rec.OwnerID)
	if err != nil {
		return a.lookupFailure(err, "video", rec.OwnerID)
	}

	cand := Candidate{
		Video:     *video,
		Embedding: *rec,
		BaseScore: score,
	}

	if opts.BestSegment {
		segments, err := a.store.GetSegmentsForVideo(ctx, video.ID)
		if err != nil {
			return a.lookupFailure(err, "segments", video.ID)
		}
		cand.BestSegment, cand.Lexical = BestSegment(opts.QueryTokens, segments)
	}

	return resolved{outcome: outcomeOK, candidate: cand}
}

func (a *Assembler) lookupFailure(err error, what string, id int64) resolved {
	if errors.Is(err, models.ErrNotFound) {
		return resolved{outcome: outcomeStale}
	}
	a.logger.Warn().Err(err).Str("lookup", what).Int64("id", id).Msg("candidate lookup failed, skipping")
	return resolved{outcome: outcomeFailed}
}

// BestSegment returns the segment with the highest summed token presence
// probability and that sum. Ties keep the earlier segment. It returns nil only
// when segments is empty.
func BestSegment(tokens []string, segments []models.Segment) (*models.Segment, float64) {
	var best *models.Segment
	bestSum := 0.0
	for i := range segments {
		sum := lattice.QueryMatch(tokens, &segments[i])
		if best == nil || sum > bestSum {
			best = &segments[i]
			bestSum = sum
		}
	}
	return best, bestSum
}

func recordSkips(r *RecallResult) {
	if r.Stale > 0 {
		metrics.RecallSkipped.WithLabelValues("stale").Add(float64(r.Stale))
	}
	if r.NonVideo > 0 {
		metrics.RecallSkipped.WithLabelValues("non_video").Add(float64(r.NonVideo))
	}
	if r.Duplicates > 0 {
		metrics.RecallSkipped.WithLabelValues("duplicate").Add(float64(r.Duplicates))
	}
	if r.Failed > 0 {
		metrics.RecallSkipped.WithLabelValues("error").Add(float64(r.Failed))
	}
}

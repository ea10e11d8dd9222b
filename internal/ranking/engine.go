// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vidrank/internal/lattice"
	"github.com/tomtom215/vidrank/internal/logging"
	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
)

const (
	pipelineSearch = "search"
	pipelineFeed   = "feed"
)

// Dependencies are the collaborators the engine needs. All are required.
type Dependencies struct {
	Index        DenseIndex
	Store        MetadataStore
	Encoder      Encoder
	CrossEncoder CrossEncoder
	Diversifier  Diversifier
}

func (d Dependencies) validate() error {
	switch {
	case d.Index == nil:
		return errors.New("dense index is required")
	case d.Store == nil:
		return errors.New("metadata store is required")
	case d.Encoder == nil:
		return errors.New("encoder is required")
	case d.CrossEncoder == nil:
		return errors.New("cross encoder is required")
	case d.Diversifier == nil:
		return errors.New("diversifier is required")
	}
	return nil
}

// Engine runs the search and feed pipelines.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	store       MetadataStore
	encoder     Encoder
	diversifier Diversifier
	assembler   *Assembler
	scorer      *Scorer
}

// NewEngine creates a ranking engine. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	engineLogger := logger.With().Str("component", "ranking").Logger()
	if cfg.QuerySimilarity == QuerySimilarityLegacy {
		engineLogger.Warn().Msg("legacy query similarity enabled: the delta term is a constant self-similarity and does not affect order")
	}

	return &Engine{
		config:      cfg.Clone(),
		logger:      engineLogger,
		store:       deps.Store,
		encoder:     deps.Encoder,
		diversifier: deps.Diversifier,
		assembler:   NewAssembler(deps.Index, deps.Store, cfg.Limits.LookupConcurrency, logger),
		scorer:      NewScorer(deps.CrossEncoder, cfg.Weights, cfg.QuerySimilarity, logger),
	}, nil
}

// Search ranks videos against a text query.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()
	req.RequestID = requestID(ctx, req.RequestID)
	k := e.clampK(req.K)
	ctx = logging.ContextWithRequestID(ctx, req.RequestID)
	logger := e.requestLogger(ctx).Str("pipeline", pipelineSearch).Logger()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		metrics.RecordPipeline(pipelineSearch, "error", time.Since(start), -1)
		return nil, ErrEmptyQuery
	}

	vectors, err := e.encoder.Encode(ctx, []string{query})
	if err != nil {
		metrics.RecordPipeline(pipelineSearch, "error", time.Since(start), -1)
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(vectors) != 1 {
		metrics.RecordPipeline(pipelineSearch, "error", time.Since(start), -1)
		return nil, fmt.Errorf("encode query: got %d vectors for 1 text", len(vectors))
	}
	queryVec := vectors[0]

	recall, err := e.assembler.Recall(ctx, queryVec, RecallOptions{
		N:           e.config.Recall.SearchN,
		QueryTokens: lattice.Tokenize(query),
		BestSegment: true,
	})
	if err != nil {
		metrics.RecordPipeline(pipelineSearch, "error", time.Since(start), -1)
		return nil, fmt.Errorf("recall: %w", err)
	}

	if err := e.scoreCandidates(ctx, queryVec, query, recall.Candidates); err != nil {
		metrics.RecordPipeline(pipelineSearch, "error", time.Since(start), recall.Recalled)
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	selected := e.diversify(ctx, recall.Candidates, k)
	results := make([]SearchResult, 0, len(selected))
	for _, c := range selected {
		results = append(results, SearchResult{
			VideoID:     c.Video.ID,
			Title:       c.Video.Title,
			Score:       c.Score,
			BestSegment: bestSegmentText(c.BestSegment),
			Signals:     c.Signals,
		})
	}

	resp := &SearchResponse{
		Results:  results,
		Metadata: e.metadata(req.RequestID, pipelineSearch, recall, len(results), start),
	}
	metrics.RecordPipeline(pipelineSearch, "success", time.Since(start), recall.Recalled)

	logger.Debug().
		Int("recalled", recall.Recalled).
		Int("candidates", len(recall.Candidates)).
		Int("returned", len(results)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("search complete")

	return resp, nil
}

// Feed builds a personalized slate from the user's stored embedding.
// A user without an embedding receives an empty feed with ColdStart set.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Feed(ctx context.Context, req FeedRequest) (*FeedResponse, error) {
	start := time.Now()
	req.RequestID = requestID(ctx, req.RequestID)
	k := e.clampK(req.K)
	ctx = logging.ContextWithRequestID(ctx, req.RequestID)
	logger := e.requestLogger(ctx).
		Str("pipeline", pipelineFeed).
		Int64("user_id", req.UserID).
		Logger()

	user, err := e.store.GetUser(ctx, req.UserID)
	if err != nil {
		metrics.RecordPipeline(pipelineFeed, "error", time.Since(start), -1)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, req.UserID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	rec, err := e.store.GetOwnerEmbedding(ctx, models.OwnerUser, user.ID, e.config.EmbeddingPolicy)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		metrics.RecordPipeline(pipelineFeed, "error", time.Since(start), -1)
		return nil, fmt.Errorf("get user embedding: %w", err)
	}
	if err != nil || len(rec.Vector) == 0 {
		metrics.RecordPipeline(pipelineFeed, "cold_start", time.Since(start), -1)
		logger.Debug().Msg("user has no embedding, returning empty feed")
		md := e.metadata(req.RequestID, pipelineFeed, &RecallResult{}, 0, start)
		md.ColdStart = true
		return &FeedResponse{Items: []FeedItem{}, Metadata: md}, nil
	}

	recall, err := e.assembler.Recall(ctx, rec.Vector, RecallOptions{N: e.config.Recall.FeedN})
	if err != nil {
		metrics.RecordPipeline(pipelineFeed, "error", time.Since(start), -1)
		return nil, fmt.Errorf("recall: %w", err)
	}

	if err := e.scoreCandidates(ctx, rec.Vector, "", recall.Candidates); err != nil {
		metrics.RecordPipeline(pipelineFeed, "error", time.Since(start), recall.Recalled)
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	selected := e.diversify(ctx, recall.Candidates, k)
	items := make([]FeedItem, 0, len(selected))
	for _, c := range selected {
		items = append(items, FeedItem{VideoID: c.Video.ID, Title: c.Video.Title})
	}

	resp := &FeedResponse{
		Items:    items,
		Metadata: e.metadata(req.RequestID, pipelineFeed, recall, len(items), start),
	}
	metrics.RecordPipeline(pipelineFeed, "success", time.Since(start), recall.Recalled)

	logger.Debug().
		Int("recalled", recall.Recalled).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("feed complete")

	return resp, nil
}

// scoreCandidates fills Score and Signals in place. Candidates are scored
// concurrently up to the configured limit.
func (e *Engine) scoreCandidates(ctx context.Context, anchor models.Vector, query string, candidates []Candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Limits.ScoreConcurrency)

	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := &candidates[i]
			c.Score, c.Signals = e.scorer.ScoreVideo(gctx, ScoreInput{
				Anchor:      anchor,
				QueryText:   query,
				Candidate:   c.Embedding.Vector,
				SegmentText: segmentText(c.BestSegment),
				Lexical:     c.Lexical,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// diversify maps candidates through the diversifier and back.
func (e *Engine) diversify(ctx context.Context, candidates []Candidate, k int) []Candidate {
	items := make([]RankedItem, len(candidates))
	byVideo := make(map[int64]int, len(candidates))
	for i := range candidates {
		items[i] = RankedItem{
			VideoID:   candidates[i].Video.ID,
			Score:     candidates[i].Score,
			Embedding: candidates[i].Embedding.Vector,
		}
		byVideo[candidates[i].Video.ID] = i
	}

	picked := e.diversifier.Diversify(ctx, items, k, e.config.Diversity.Penalty)
	out := make([]Candidate, 0, len(picked))
	for _, item := range picked {
		if idx, ok := byVideo[item.VideoID]; ok {
			out = append(out, candidates[idx])
		}
	}
	return out
}

// clampK applies the default and maximum K.
func (e *Engine) clampK(k int) int {
	if k <= 0 {
		k = e.config.Limits.DefaultK
	}
	if k > e.config.Limits.MaxK {
		k = e.config.Limits.MaxK
	}
	return k
}

// requestLogger derives a child of the engine logger carrying the
// request and correlation ids from ctx.
func (e *Engine) requestLogger(ctx context.Context) zerolog.Context {
	return logging.CtxWith(logging.ContextWithLogger(ctx, e.logger))
}

// requestID prefers the explicit id, then one carried by ctx.
func requestID(ctx context.Context, id string) string {
	if id != "" {
		return id
	}
	if id = logging.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return logging.GenerateRequestID()
}

func (e *Engine) metadata(requestID, pipeline string, recall *RecallResult, returned int, start time.Time) ResponseMetadata {
	return ResponseMetadata{
		RequestID:  requestID,
		Pipeline:   pipeline,
		Recalled:   recall.Recalled,
		Candidates: len(recall.Candidates),
		Stale:      recall.Stale,
		Failed:     recall.Failed,
		Returned:   returned,
		LatencyMS:  time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	}
}

// segmentText is the text scored by the cross-encoder. Segments without a
// transcript fall back to their most likely lattice hypothesis.
func segmentText(seg *models.Segment) string {
	if seg == nil {
		return ""
	}
	if seg.Transcript != "" || len(seg.Lattice) == 0 {
		return seg.Transcript
	}
	best := seg.Lattice[0]
	for _, h := range seg.Lattice[1:] {
		if h.Score < best.Score {
			best = h
		}
	}
	return best.Text
}

// bestSegmentText is the response's best segment transcript, nil when the
// video has no segments. The lattice fallback is not applied here.
func bestSegmentText(seg *models.Segment) *string {
	if seg == nil {
		return nil
	}
	text := seg.Transcript
	return &text
}

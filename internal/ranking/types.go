// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"errors"
	"time"

	"github.com/tomtom215/vidrank/internal/models"
)

var (
	// ErrUserNotFound is returned by Feed when the requesting user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyQuery is returned by Search for blank query text.
	ErrEmptyQuery = errors.New("query is empty")
)

// Signals is the per-term breakdown of a composite score before weighting.
type Signals struct {
	Cross           float64 `json:"cross"`
	Cosine          float64 `json:"cosine"`
	QuerySimilarity float64 `json:"query_similarity"`
	Lexical         float64 `json:"lexical"`
	Exact           float64 `json:"exact"`
}

// Candidate is a recalled video being ranked for one request.
type Candidate struct {
	Video     models.Video
	Embedding models.EmbeddingRecord

	// BaseScore is the inner-product similarity reported by the dense index.
	BaseScore float64

	// BestSegment is the segment that best matches the query tokens.
	// Always nil on the feed path and for videos without segments.
	BestSegment *models.Segment

	// Lexical is the summed token presence probability of BestSegment.
	Lexical float64

	Score   float64
	Signals Signals
}

// RankedItem is the input to diversification.
type RankedItem struct {
	VideoID   int64
	Score     float64
	Embedding models.Vector
}

// SearchRequest asks for the top K videos for a text query.
type SearchRequest struct {
	Query string `json:"query"`

	// K is the number of results. 0 means the configured default.
	K int `json:"k,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// FeedRequest asks for a personalized slate for a user.
type FeedRequest struct {
	UserID    int64  `json:"user_id"`
	K         int    `json:"k,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// SearchResult is one ranked search hit.
type SearchResult struct {
	VideoID     int64   `json:"videoId"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	BestSegment *string `json:"bestSegment"`
	Signals     Signals `json:"signals"`
}

// FeedItem is one feed entry.
type FeedItem struct {
	VideoID int64  `json:"videoId"`
	Title   string `json:"title"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`
	Pipeline  string `json:"pipeline"`

	// Recalled is the number of hits returned by the dense index.
	Recalled int `json:"recalled"`

	// Candidates is the number of hits that survived assembly.
	Candidates int `json:"candidates"`

	Stale     int  `json:"stale"`
	Failed    int  `json:"failed"`
	Returned  int  `json:"returned"`
	ColdStart bool `json:"cold_start,omitempty"`

	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchResponse is the result of Engine.Search.
type SearchResponse struct {
	Results  []SearchResult   `json:"results"`
	Metadata ResponseMetadata `json:"metadata"`
}

// FeedResponse is the result of Engine.Feed.
type FeedResponse struct {
	Items    []FeedItem       `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

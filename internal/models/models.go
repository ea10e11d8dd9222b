// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned by store lookups when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Vector is a dense semantic embedding. All vectors compared with each other
// must share the same dimension.
type Vector []float32

// Dim returns the vector dimension.
func (v Vector) Dim() int { return len(v) }

// OwnerType tags the owner of an embedding record.
type OwnerType string

const (
	OwnerVideo OwnerType = "video"
	OwnerUser  OwnerType = "user"
)

// Valid reports whether t is a known owner type.
func (t OwnerType) Valid() bool {
	return t == OwnerVideo || t == OwnerUser
}

// SelectionPolicy decides which embedding represents an owner that has more
// than one stored record.
type SelectionPolicy string

const (
	// SelectPrimary picks the record flagged primary, falling back to SelectLatest.
	SelectPrimary SelectionPolicy = "primary"
	// SelectLatest picks the most recently created record.
	SelectLatest SelectionPolicy = "latest"
	// SelectFirst picks the oldest record by id.
	SelectFirst SelectionPolicy = "first"
)

// Valid reports whether p is a known selection policy.
func (p SelectionPolicy) Valid() bool {
	switch p {
	case SelectPrimary, SelectLatest, SelectFirst:
		return true
	}
	return false
}

// Hypothesis is one speech-recognition decoding alternative. Score is
// cost-like: lower means more likely.
type Hypothesis struct {
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// UnmarshalJSON accepts both {"score","text"} and the older
// {"score","hypothesis"} lattice layout.
func (h *Hypothesis) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score      float64 `json:"score"`
		Text       *string `json:"text"`
		Hypothesis *string `json:"hypothesis"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode hypothesis: %w", err)
	}
	h.Score = raw.Score
	switch {
	case raw.Text != nil:
		h.Text = *raw.Text
	case raw.Hypothesis != nil:
		h.Text = *raw.Hypothesis
	default:
		h.Text = ""
	}
	return nil
}

// Lattice is the ordered hypothesis set for a single segment.
type Lattice []Hypothesis

// Segment is a time range of a video with its transcription evidence.
type Segment struct {
	ID         int64    `json:"id"`
	VideoID    int64    `json:"videoId"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Transcript string   `json:"transcript,omitempty"`
	Lattice    Lattice  `json:"asrLattice,omitempty"`
	Confidence *float64 `json:"asrConfidence,omitempty"`
}

// Video is a ranked item. Segments are loaded separately through the store.
type Video struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags,omitempty"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a feed recipient.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmbeddingRecord associates exactly one owner with a stored vector.
type EmbeddingRecord struct {
	ID        int64     `json:"id"`
	OwnerType OwnerType `json:"ownerType"`
	OwnerID   int64     `json:"ownerId"`
	Vector    Vector    `json:"vector"`
	Dim       int       `json:"dim"`
	Primary   bool      `json:"primary,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package diversity

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

func ids(items []ranking.RankedItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.VideoID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMMR_Diversify_PenaltyClamp(t *testing.T) {
	same := models.Vector{1, 0}
	items := []ranking.RankedItem{
		{VideoID: 1, Score: 3, Embedding: same},
		{VideoID: 2, Score: 2, Embedding: same},
		{VideoID: 3, Score: 1, Embedding: models.Vector{0, 1}},
	}

	tests := []struct {
		name    string
		penalty float64
		want    []int64
	}{
		{"negative behaves as zero", -1, []int64{1, 2, 3}},
		{"NaN behaves as zero", math.NaN(), []int64{1, 2, 3}},
		{"above one allowed", 2.5, []int64{1, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMMR().Diversify(context.Background(), items, 3, tt.penalty)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Diversify() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestMMR_Name(t *testing.T) {
	if got := NewMMR().Name(); got != "mmr" {
		t.Errorf("Name() = %q, want %q", got, "mmr")
	}
}

func TestMMR_Diversify_Empty(t *testing.T) {
	m := NewMMR()
	items := []ranking.RankedItem{{VideoID: 1, Score: 1, Embedding: models.Vector{1}}}

	if got := m.Diversify(context.Background(), nil, 5, 0.7); len(got) != 0 {
		t.Errorf("Diversify(nil, 5) = %v, want empty", got)
	}
	if got := m.Diversify(context.Background(), items, 0, 0.7); len(got) != 0 {
		t.Errorf("Diversify(items, 0) = %v, want empty", got)
	}
	if got := m.Diversify(context.Background(), items, -3, 0.7); len(got) != 0 {
		t.Errorf("Diversify(items, -3) = %v, want empty", got)
	}
}

func TestMMR_Diversify(t *testing.T) {
	same := models.Vector{1, 0, 0}
	orth := models.Vector{0, 1, 0}
	opposite := models.Vector{-1, 0, 0}

	tests := []struct {
		name    string
		penalty float64
		items   []ranking.RankedItem
		k       int
		want    []int64
	}{
		{
			name:    "redundant candidate is penalized",
			penalty: 0.7,
			items: []ranking.RankedItem{
				{VideoID: 1, Score: 10, Embedding: same},
				{VideoID: 2, Score: 9, Embedding: same},
				{VideoID: 3, Score: 8, Embedding: orth},
			},
			k:    2,
			want: []int64{1, 3},
		},
		{
			name:    "equal scores prefer the less similar candidate",
			penalty: 0.7,
			items: []ranking.RankedItem{
				{VideoID: 1, Score: 5, Embedding: same},
				{VideoID: 2, Score: 4, Embedding: same},
				{VideoID: 3, Score: 4, Embedding: orth},
			},
			k:    3,
			want: []int64{1, 3, 2},
		},
		{
			name:    "ties go to pool order",
			penalty: 0.7,
			items: []ranking.RankedItem{
				{VideoID: 4, Score: 1, Embedding: orth},
				{VideoID: 5, Score: 1, Embedding: orth},
			},
			k:    2,
			want: []int64{4, 5},
		},
		{
			name:    "negative similarity is not a bonus",
			penalty: 0.7,
			items: []ranking.RankedItem{
				{VideoID: 1, Score: 10, Embedding: same},
				{VideoID: 2, Score: 6, Embedding: orth},
				{VideoID: 3, Score: 6, Embedding: opposite},
			},
			k:    3,
			want: []int64{1, 2, 3},
		},
		{
			name:    "zero penalty is score order",
			penalty: 0,
			items: []ranking.RankedItem{
				{VideoID: 1, Score: 1, Embedding: same},
				{VideoID: 2, Score: 3, Embedding: same},
				{VideoID: 3, Score: 2, Embedding: same},
			},
			k:    3,
			want: []int64{2, 3, 1},
		},
		{
			name:    "k larger than pool returns all",
			penalty: 0.7,
			items: []ranking.RankedItem{
				{VideoID: 1, Score: 2, Embedding: same},
				{VideoID: 2, Score: 1, Embedding: orth},
			},
			k:    10,
			want: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMMR().Diversify(context.Background(), tt.items, tt.k, tt.penalty)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Diversify() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

// Selection must be recomputed every round: after picking 1, item 2 drops
// below 3, but once 3 is picked, 4 (similar to 3) drops below 2.
func TestMMR_Diversify_RoundByRound(t *testing.T) {
	a := models.Vector{1, 0}
	b := models.Vector{0, 1}
	items := []ranking.RankedItem{
		{VideoID: 1, Score: 10, Embedding: a},
		{VideoID: 2, Score: 9.5, Embedding: a},
		{VideoID: 3, Score: 9, Embedding: b},
		{VideoID: 4, Score: 8.9, Embedding: b},
	}

	got := NewMMR().Diversify(context.Background(), items, 4, 0.7)
	want := []int64{1, 3, 2, 4}
	if !equalIDs(ids(got), want) {
		t.Errorf("Diversify() = %v, want %v", ids(got), want)
	}
}

func TestMMR_Diversify_NoDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := make([]ranking.RankedItem, 60)
	for i := range items {
		items[i] = ranking.RankedItem{
			VideoID:   int64(i + 1),
			Score:     rng.Float64() * 10,
			Embedding: models.Vector{rng.Float32() - 0.5, rng.Float32() - 0.5, rng.Float32() - 0.5},
		}
	}

	m := NewMMR()
	for _, k := range []int{1, 12, 59, 60, 100} {
		got := m.Diversify(context.Background(), items, k, 0.7)
		want := k
		if want > len(items) {
			want = len(items)
		}
		if len(got) != want {
			t.Errorf("k=%d: len = %d, want %d", k, len(got), want)
		}
		seen := make(map[int64]bool, len(got))
		for _, it := range got {
			if seen[it.VideoID] {
				t.Errorf("k=%d: duplicate video %d", k, it.VideoID)
			}
			seen[it.VideoID] = true
		}
	}
}

func TestMMR_Diversify_LargePool(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large pool selection in short mode")
	}

	const n = 10005
	items := make([]ranking.RankedItem, n)
	for i := range items {
		items[i] = ranking.RankedItem{
			VideoID:   int64(i + 1),
			Score:     float64(n - i),
			Embedding: models.Vector{1},
		}
	}

	got := NewMMR().Diversify(context.Background(), items, n+10, 0)
	if len(got) != n {
		t.Fatalf("len = %d, want %d", len(got), n)
	}
	if got[0].VideoID != 1 || got[n-1].VideoID != n {
		t.Errorf("order = [%d ... %d], want [1 ... %d]", got[0].VideoID, got[n-1].VideoID, n)
	}
}

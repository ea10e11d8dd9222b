// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package index

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/models"
)

func TestNewFlatIP(t *testing.T) {
	if _, err := NewFlatIP(0); err == nil {
		t.Error("NewFlatIP(0) expected error")
	}
	idx, err := NewFlatIP(4)
	if err != nil {
		t.Fatalf("NewFlatIP(4) error = %v", err)
	}
	if idx.Dim() != 4 || idx.Len() != 0 {
		t.Errorf("Dim() = %d, Len() = %d, want 4, 0", idx.Dim(), idx.Len())
	}
}

func TestFlatIP_AddAndSearch(t *testing.T) {
	idx, _ := NewFlatIP(2)
	ids, err := idx.Add([]models.Vector{{1, 0}, {0, 1}, {0.7, 0.7}, {-1, 0}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(ids) != 4 || ids[0] != 0 || ids[3] != 3 {
		t.Errorf("Add() ids = %v, want [0 1 2 3]", ids)
	}

	tests := []struct {
		name  string
		query models.Vector
		k     int
		want  []int64
	}{
		{"top 1", models.Vector{1, 0}, 1, []int64{0}},
		{"top 3", models.Vector{1, 0.1}, 3, []int64{0, 2, 1}},
		{"k larger than index", models.Vector{0, 1}, 10, []int64{1, 2, 0, 3}},
		{"k zero", models.Vector{0, 1}, 0, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(context.Background(), tt.query, tt.k)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if hits.Len() != len(tt.want) {
				t.Fatalf("Search() ids = %v, want %v", hits.IDs, tt.want)
			}
			for i := range tt.want {
				if hits.IDs[i] != tt.want[i] {
					t.Errorf("Search() ids = %v, want %v", hits.IDs, tt.want)
					break
				}
			}
			for i := 1; i < len(hits.Scores); i++ {
				if hits.Scores[i] > hits.Scores[i-1] {
					t.Errorf("scores not descending: %v", hits.Scores)
				}
			}
		})
	}
}

func TestFlatIP_TiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewFlatIP(1)
	if err := idx.AddWithIDs([]int64{30, 10, 20}, []models.Vector{{1}, {1}, {1}}); err != nil {
		t.Fatalf("AddWithIDs() error = %v", err)
	}
	hits, _ := idx.Search(context.Background(), models.Vector{1}, 2)
	if len(hits.IDs) != 2 || hits.IDs[0] != 30 || hits.IDs[1] != 10 {
		t.Errorf("Search() ids = %v, want [30 10]", hits.IDs)
	}
}

func TestFlatIP_DimensionErrors(t *testing.T) {
	idx, _ := NewFlatIP(3)
	if _, err := idx.Add([]models.Vector{{1, 2}}); err == nil {
		t.Error("Add() expected dimension error")
	}
	if err := idx.AddWithIDs([]int64{1, 2}, []models.Vector{{1, 2, 3}}); err == nil {
		t.Error("AddWithIDs() expected length mismatch error")
	}
	if _, err := idx.Search(context.Background(), models.Vector{1}, 1); err == nil {
		t.Error("Search() expected dimension error")
	}
}

func TestFlatIP_AddContinuesAfterExplicitIDs(t *testing.T) {
	idx, _ := NewFlatIP(1)
	_ = idx.AddWithIDs([]int64{41}, []models.Vector{{1}})
	ids, _ := idx.Add([]models.Vector{{2}})
	if ids[0] != 42 {
		t.Errorf("Add() id = %d, want 42", ids[0])
	}
}

func TestFlatIP_MatchesBruteForce(t *testing.T) {
	const dim, n, k = 16, 500, 25
	rng := rand.New(rand.NewSource(1))
	idx, _ := NewFlatIP(dim)

	vectors := make([]models.Vector, n)
	for i := range vectors {
		vectors[i] = make(models.Vector, dim)
		for j := range vectors[i] {
			vectors[i][j] = rng.Float32() - 0.5
		}
	}
	if _, err := idx.Add(vectors); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	q := vectors[7]
	scores := make([]float64, n)
	order := make([]int, n)
	for i := range vectors {
		order[i] = i
		for j := range q {
			scores[i] += float64(vectors[i][j]) * float64(q[j])
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	hits, err := idx.Search(context.Background(), q, k)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := 0; i < k; i++ {
		if hits.IDs[i] != int64(order[i]) {
			t.Fatalf("hit %d = %d, want %d", i, hits.IDs[i], order[i])
		}
	}
}

func TestFlatIP_ConcurrentSearch(t *testing.T) {
	idx, _ := NewFlatIP(2)
	_, _ = idx.Add([]models.Vector{{1, 0}, {0, 1}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				_, _ = idx.Add([]models.Vector{{0.5, 0.5}})
				return
			}
			if _, err := idx.Search(context.Background(), models.Vector{1, 0}, 3); err != nil {
				t.Errorf("Search() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if idx.Len() != 6 {
		t.Errorf("Len() = %d, want 6", idx.Len())
	}
}

func TestFlatIP_CanceledContext(t *testing.T) {
	idx, _ := NewFlatIP(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := idx.Search(ctx, models.Vector{1}, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Search() error = %v, want context.Canceled", err)
	}
}

type fakeSource struct {
	records []models.EmbeddingRecord
	err     error
}

func (s *fakeSource) ListEmbeddings(_ context.Context, ownerType models.OwnerType) ([]models.EmbeddingRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.EmbeddingRecord
	for _, r := range s.records {
		if r.OwnerType == ownerType {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestBuild(t *testing.T) {
	src := &fakeSource{records: []models.EmbeddingRecord{
		{ID: 5, OwnerType: models.OwnerVideo, OwnerID: 1, Vector: models.Vector{1, 0}},
		{ID: 6, OwnerType: models.OwnerVideo, OwnerID: 2, Vector: models.Vector{0, 1}},
		{ID: 7, OwnerType: models.OwnerVideo, OwnerID: 3, Vector: models.Vector{1, 1, 1}},
		{ID: 8, OwnerType: models.OwnerUser, OwnerID: 1, Vector: models.Vector{1, 0}},
	}}

	idx, err := Build(context.Background(), src, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}

	hits, _ := idx.Search(context.Background(), models.Vector{0, 1}, 1)
	if hits.IDs[0] != 6 {
		t.Errorf("Search() top id = %d, want embedding 6", hits.IDs[0])
	}

	if _, err := Build(context.Background(), &fakeSource{err: errors.New("db closed")}, 2, zerolog.Nop()); err == nil {
		t.Error("Build() expected error from source")
	}
}

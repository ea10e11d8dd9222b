// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package index

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

// FlatIP is an exact inner-product index over fixed-dimension vectors.
// Searches run concurrently with each other; Add blocks searches.
type FlatIP struct {
	mu   sync.RWMutex
	dim  int
	data []float32 // row-major, len(ids)*dim
	ids  []int64
	next int64
}

// NewFlatIP creates an empty index for vectors of dimension dim.
func NewFlatIP(dim int) (*FlatIP, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &FlatIP{dim: dim}, nil
}

// Dim returns the vector dimension.
func (f *FlatIP) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *FlatIP) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Add stores vectors under sequential ids continuing from the last
// auto-assigned id, and returns the assigned ids.
func (f *FlatIP) Add(vectors []models.Vector) ([]int64, error) {
	if err := f.checkDims(vectors); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	assigned := make([]int64, len(vectors))
	for i, v := range vectors {
		assigned[i] = f.next
		f.next++
		f.append(assigned[i], v)
	}
	return assigned, nil
}

// AddWithIDs stores vectors under caller-chosen ids, typically embedding
// record ids.
func (f *FlatIP) AddWithIDs(ids []int64, vectors []models.Vector) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("got %d ids for %d vectors", len(ids), len(vectors))
	}
	if err := f.checkDims(vectors); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range vectors {
		f.append(ids[i], v)
		if ids[i] >= f.next {
			f.next = ids[i] + 1
		}
	}
	return nil
}

// Search returns up to k ids ordered by descending inner product with query.
func (f *FlatIP) Search(ctx context.Context, query models.Vector, k int) (ranking.SearchHits, error) {
	if len(query) != f.dim {
		return ranking.SearchHits{}, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dim)
	}
	if k <= 0 {
		return ranking.SearchHits{}, nil
	}
	if err := ctx.Err(); err != nil {
		return ranking.SearchHits{}, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	h := make(topHeap, 0, min(k, len(f.ids)))
	for row, id := range f.ids {
		score := f.dot(row, query)
		switch {
		case len(h) < k:
			heap.Push(&h, hit{id: id, score: score, row: row})
		case better(hit{score: score, row: row}, h[0]):
			h[0] = hit{id: id, score: score, row: row}
			heap.Fix(&h, 0)
		}
	}

	sort.Slice(h, func(i, j int) bool { return better(h[i], h[j]) })
	out := ranking.SearchHits{
		IDs:    make([]int64, len(h)),
		Scores: make([]float64, len(h)),
	}
	for i, x := range h {
		out.IDs[i] = x.id
		out.Scores[i] = x.score
	}
	return out, nil
}

func (f *FlatIP) checkDims(vectors []models.Vector) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), f.dim)
		}
	}
	return nil
}

// append must be called with mu held.
func (f *FlatIP) append(id int64, v models.Vector) {
	f.ids = append(f.ids, id)
	f.data = append(f.data, v...)
}

func (f *FlatIP) dot(row int, q models.Vector) float64 {
	base := row * f.dim
	var s float64
	for j, x := range q {
		s += float64(f.data[base+j]) * float64(x)
	}
	return s
}

// hit is a scored row. Rows inserted earlier win score ties so results are
// deterministic.
type hit struct {
	id    int64
	score float64
	row   int
}

func better(a, b hit) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.row < b.row
}

// topHeap is a min-heap on hit quality; the root is the weakest kept hit.
type topHeap []hit

func (h topHeap) Len() int           { return len(h) }
func (h topHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h topHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *topHeap) Push(x any) { *h = append(*h, x.(hit)) }

func (h *topHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Ensure FlatIP implements the interface.
var _ ranking.DenseIndex = (*FlatIP)(nil)

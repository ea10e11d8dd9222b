// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/vidrank/internal/models"
)

// mockIndex returns a fixed hit list truncated to k.
type mockIndex struct {
	hits SearchHits
	err  error
}

func (m *mockIndex) Search(_ context.Context, _ models.Vector, k int) (SearchHits, error) {
	if m.err != nil {
		return SearchHits{}, m.err
	}
	n := m.hits.Len()
	if k < n {
		n = k
	}
	return SearchHits{IDs: m.hits.IDs[:n], Scores: m.hits.Scores[:n]}, nil
}

// mockStore is an in-memory MetadataStore.
type mockStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	videos     map[int64]*models.Video
	embeddings map[int64]*models.EmbeddingRecord
	segments   map[int64][]models.Segment

	// failVideos makes GetVideo return a non-NotFound error for these ids.
	failVideos map[int64]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		users:      make(map[int64]*models.User),
		videos:     make(map[int64]*models.Video),
		embeddings: make(map[int64]*models.EmbeddingRecord),
		segments:   make(map[int64][]models.Segment),
		failVideos: make(map[int64]bool),
	}
}

func (s *mockStore) addVideo(id int64, title string, vec models.Vector, segs ...models.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[id] = &models.Video{ID: id, Title: title}
	s.embeddings[id] = &models.EmbeddingRecord{ID: id, OwnerType: models.OwnerVideo, OwnerID: id, Vector: vec, Dim: len(vec)}
	s.segments[id] = segs
}

func (s *mockStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
}

func (s *mockStore) GetVideo(_ context.Context, id int64) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failVideos[id] {
		return nil, errors.New("connection reset")
	}
	if v, ok := s.videos[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("video %d: %w", id, models.ErrNotFound)
}

func (s *mockStore) GetEmbedding(_ context.Context, id int64) (*models.EmbeddingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.embeddings[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("embedding %d: %w", id, models.ErrNotFound)
}

func (s *mockStore) GetOwnerEmbedding(_ context.Context, ownerType models.OwnerType, ownerID int64, _ models.SelectionPolicy) (*models.EmbeddingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.embeddings {
		if e.OwnerType == ownerType && e.OwnerID == ownerID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s %d embedding: %w", ownerType, ownerID, models.ErrNotFound)
}

func (s *mockStore) GetSegmentsForVideo(_ context.Context, videoID int64) ([]models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments[videoID], nil
}

// mockEncoder returns the same vector for every text.
type mockEncoder struct {
	vec models.Vector
	err error
}

func (m *mockEncoder) Encode(_ context.Context, texts []string) ([]models.Vector, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Vector, len(texts))
	for i := range texts {
		out[i] = m.vec
	}
	return out, nil
}

// mockCross scores by text lookup and counts calls.
type mockCross struct {
	scores map[string]float64
	err    error
	calls  atomic.Int64
}

func (m *mockCross) Score(_ context.Context, _, text string) (float64, error) {
	m.calls.Add(1)
	if m.err != nil {
		return 0, m.err
	}
	return m.scores[text], nil
}

// topK keeps pure score order.
type topK struct{}

func (topK) Name() string { return "topk" }

func (topK) Diversify(_ context.Context, items []RankedItem, k int, _ float64) []RankedItem {
	out := append([]RankedItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// penaltyRecorder wraps topK and keeps the last penalty it was given.
type penaltyRecorder struct {
	topK
	penalty float64
}

func (p *penaltyRecorder) Diversify(ctx context.Context, items []RankedItem, k int, penalty float64) []RankedItem {
	p.penalty = penalty
	return p.topK.Diversify(ctx, items, k, penalty)
}

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/models"
)

// stubEncoder returns fixed vectors or an error and counts calls.
type stubEncoder struct {
	err   error
	calls int
	texts [][]string
	dim   int
}

func (s *stubEncoder) Encode(_ context.Context, texts []string) ([]models.Vector, error) {
	s.calls++
	s.texts = append(s.texts, append([]string(nil), texts...))
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Vector, len(texts))
	for i, text := range texts {
		v := make(models.Vector, s.dim)
		for j := range v {
			v[j] = float32(len(text))
		}
		out[i] = v
	}
	return out, nil
}

func TestFallbackEncoder_NoPrimary(t *testing.T) {
	enc := NewFallbackEncoder(nil, 512, 42, zerolog.Nop())

	vectors, err := enc.Encode(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, v := range vectors {
		if v.Dim() != 512 {
			t.Errorf("vector %d has dim %d, want 512", i, v.Dim())
		}
		for j, x := range v {
			if x < -0.5 || x >= 0.5 {
				t.Fatalf("vector %d component %d = %v, want in [-0.5, 0.5)", i, j, x)
			}
		}
	}
}

func TestFallbackEncoder_Seeded(t *testing.T) {
	a := NewFallbackEncoder(nil, 16, 7, zerolog.Nop())
	b := NewFallbackEncoder(nil, 16, 7, zerolog.Nop())

	va, _ := a.Encode(context.Background(), []string{"x"})
	vb, _ := b.Encode(context.Background(), []string{"x"})
	for i := range va[0] {
		if va[0][i] != vb[0][i] {
			t.Fatalf("same seed produced different vectors at %d: %v vs %v", i, va[0][i], vb[0][i])
		}
	}

	// consecutive draws differ
	vc, _ := a.Encode(context.Background(), []string{"x"})
	same := true
	for i := range va[0] {
		if va[0][i] != vc[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("consecutive fallback vectors should differ")
	}
}

func TestFallbackEncoder_PrimarySucceeds(t *testing.T) {
	primary := &stubEncoder{dim: 4}
	enc := NewFallbackEncoder(primary, 4, 1, zerolog.Nop())

	vectors, err := enc.Encode(context.Background(), []string{"abc"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if vectors[0][0] != 3 {
		t.Errorf("expected primary vector, got %v", vectors[0])
	}
}

func TestFallbackEncoder_PrimaryFails(t *testing.T) {
	primary := &stubEncoder{err: errors.New("service down")}
	enc := NewFallbackEncoder(primary, 8, 1, zerolog.Nop())

	vectors, err := enc.Encode(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Encode() should not fail, got %v", err)
	}
	if len(vectors) != 2 || vectors[0].Dim() != 8 {
		t.Errorf("vectors = %v", vectors)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
}

func TestFallbackEncoder_CanceledContext(t *testing.T) {
	primary := &stubEncoder{err: context.Canceled}
	enc := NewFallbackEncoder(primary, 8, 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := enc.Encode(ctx, []string{"a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFallbackEncoder_EmptyInput(t *testing.T) {
	enc := NewFallbackEncoder(nil, 8, 1, zerolog.Nop())
	vectors, err := enc.Encode(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Errorf("Encode(nil) = %v, %v; want nil, nil", vectors, err)
	}
}

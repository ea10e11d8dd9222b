// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"math"
	"testing"

	"github.com/tomtom215/vidrank/internal/models"
)

func TestCosineSimilarity(t *testing.T) {
	v := models.Vector{0.3, -1.2, 4, 0.01}
	neg := make(models.Vector, len(v))
	for i := range v {
		neg[i] = -v[i]
	}

	tests := []struct {
		name string
		a, b models.Vector
		want float64
	}{
		{"identical", v, v, 1},
		{"opposite", v, neg, -1},
		{"orthogonal", models.Vector{1, 0}, models.Vector{0, 1}, 0},
		{"zero vector", models.Vector{0, 0}, models.Vector{1, 1}, 0},
		{"length mismatch", models.Vector{1, 2}, models.Vector{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package ranking

import (
	"math"

	"github.com/tomtom215/vidrank/internal/models"
)

// cosineEpsilon guards the division for zero vectors.
const cosineEpsilon = 1e-9

// CosineSimilarity returns dot(a,b) / (|a|*|b| + 1e-9). Vectors of different
// or zero length are unrelated and score 0.
func CosineSimilarity(a, b models.Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}

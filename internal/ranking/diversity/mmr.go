// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package diversity

import (
	"context"

	"github.com/tomtom215/vidrank/internal/ranking"
)

// MMR implements greedy Maximal Marginal Relevance selection over embeddings.
// Each round picks the remaining item with the highest adjusted score:
//
//	adjusted(i) = score(i) - penalty * max(0, max_{s in selected} cos(i, s))
//
// Adjusted scores are recomputed against the growing selected set every
// round, so the output is the selection order and not a sort of final scores.
// Ties go to the item that comes first in the input.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct{}

// NewMMR creates an MMR selector.
func NewMMR() *MMR {
	return &MMR{}
}

// Name returns the diversifier identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Diversify returns min(k, len(items)) items in greedy selection order.
// Negative and NaN penalties are treated as 0.
//
// The running maximum similarity of every pool item to the selected set is
// updated once per round, so a full run costs O(k*N) similarity evaluations.
func (m *MMR) Diversify(_ context.Context, items []ranking.RankedItem, k int, penalty float64) []ranking.RankedItem {
	if len(items) == 0 || k <= 0 {
		return []ranking.RankedItem{}
	}
	if !(penalty > 0) { // also catches NaN
		penalty = 0
	}
	if k > len(items) {
		k = len(items)
	}

	maxSim := make([]float64, len(items))
	taken := make([]bool, len(items))
	selected := make([]ranking.RankedItem, 0, k)

	for len(selected) < k {
		bestIdx := -1
		bestScore := 0.0
		for i := range items {
			if taken[i] {
				continue
			}
			adjusted := items[i].Score - penalty*maxSim[i]
			if bestIdx < 0 || adjusted > bestScore {
				bestIdx = i
				bestScore = adjusted
			}
		}

		taken[bestIdx] = true
		pick := items[bestIdx]
		selected = append(selected, pick)

		for i := range items {
			if taken[i] {
				continue
			}
			if sim := ranking.CosineSimilarity(pick.Embedding, items[i].Embedding); sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}

	return selected
}

// Ensure MMR implements the interface.
var _ ranking.Diversifier = (*MMR)(nil)

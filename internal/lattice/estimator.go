// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package lattice

import (
	"math"

	"github.com/tomtom215/vidrank/internal/models"
)

// normEpsilon keeps the denominator positive when every weight underflows.
const normEpsilon = 1e-12

// Normalize converts raw hypothesis scores into probabilities that sum to 1.
// The hypothesis with the lowest score receives the highest probability.
func Normalize(hyps []models.Hypothesis) []float64 {
	if len(hyps) == 0 {
		return []float64{}
	}

	minScore := hyps[0].Score
	for _, h := range hyps[1:] {
		if h.Score < minScore {
			minScore = h.Score
		}
	}

	probs := make([]float64, len(hyps))
	var sum float64
	for i, h := range hyps {
		probs[i] = math.Exp(-(h.Score - minScore))
		sum += probs[i]
	}
	sum += normEpsilon
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// TokenPresenceProbability returns the probability that token appears as a
// whole word in the true transcript of seg.
func TokenPresenceProbability(token string, seg *models.Segment) float64 {
	tok := foldToken(token)
	if tok == "" || seg == nil {
		return 0
	}
	return newEvidence(seg).presence(tok)
}

// ExpectedTokenCount returns the expected number of occurrences of token
// under the hypothesis distribution of seg.
func ExpectedTokenCount(token string, seg *models.Segment) float64 {
	tok := foldToken(token)
	if tok == "" || seg == nil {
		return 0
	}
	return newEvidence(seg).count(tok)
}

// QueryMatch sums TokenPresenceProbability over the query tokens. The
// segment is tokenized once for all tokens.
func QueryMatch(tokens []string, seg *models.Segment) float64 {
	if len(tokens) == 0 || seg == nil {
		return 0
	}
	ev := newEvidence(seg)
	var total float64
	for _, t := range tokens {
		if tok := foldToken(t); tok != "" {
			total += ev.presence(tok)
		}
	}
	return total
}

// evidence is a tokenized view of one segment.
type evidence struct {
	hasLattice bool
	probs      []float64
	hyps       [][]string
	transcript []string
}

func newEvidence(seg *models.Segment) evidence {
	if len(seg.Lattice) == 0 {
		return evidence{transcript: Tokenize(seg.Transcript)}
	}
	ev := evidence{
		hasLattice: true,
		probs:      Normalize(seg.Lattice),
		hyps:       make([][]string, len(seg.Lattice)),
	}
	for i, h := range seg.Lattice {
		ev.hyps[i] = Tokenize(h.Text)
	}
	return ev
}

func (e evidence) presence(tok string) float64 {
	if !e.hasLattice {
		if countWord(e.transcript, tok) > 0 {
			return 1
		}
		return 0
	}

	// noisy-OR over the hypotheses that contain the token
	absent := 1.0
	for i, words := range e.hyps {
		if countWord(words, tok) > 0 {
			absent *= 1 - e.probs[i]
		}
	}
	return 1 - absent
}

func (e evidence) count(tok string) float64 {
	if !e.hasLattice {
		return float64(countWord(e.transcript, tok))
	}
	var expected float64
	for i, words := range e.hyps {
		expected += e.probs[i] * float64(countWord(words, tok))
	}
	return expected
}

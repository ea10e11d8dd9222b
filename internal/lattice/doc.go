// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package lattice turns weighted speech-recognition hypotheses into calibrated
// token-presence probabilities.
//
// # Scoring Model
//
// Hypothesis scores are cost-like (lower is better). Normalize computes a
// softmax over the negated distance from the best score:
//
//	p_i = exp(-(s_i - min(s))) / (sum_j exp(-(s_j - min(s))) + 1e-12)
//
// Token presence is a noisy-OR over every hypothesis whose text contains the
// token as a whole word:
//
//	P(token) = 1 - prod_i (1 - p_i)
//
// Segments without a lattice fall back to the single transcript, which gives
// exactly 0 or 1.
//
// # Tokenization
//
// Text is NFKC-normalized, case-folded, and split on whitespace. There is no
// stemming and no phrase matching, so a token only matches an identical word.
package lattice

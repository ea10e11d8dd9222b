// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package index provides the dense vector index used for candidate recall.
//
// FlatIP is an exact, brute-force inner-product index: every query scans all
// stored vectors. It is the reference collaborator for ranking.DenseIndex and
// is adequate for catalogues up to a few hundred thousand vectors. Larger
// deployments can swap in an approximate index behind the same interface.
//
// Build loads all video embeddings from the store at start-up. The index is
// an explicitly constructed value owned by the caller; there is no
// process-wide instance.
package index

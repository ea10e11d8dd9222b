// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package ranking implements the retrieval, fusion and diversification core
// behind vidrank's search and feed pipelines.
//
// # Pipeline
//
// Both pipelines run the same stages:
//
//	anchor vector -> dense recall -> candidate assembly -> multi-signal scoring -> diversification
//
// Search embeds the query text and uses it as the anchor. Feed uses the stored
// embedding of the requesting user.
//
// # Collaborators
//
// The engine only depends on narrow interfaces (DenseIndex, Encoder,
// CrossEncoder, MetadataStore, Diversifier). Concrete implementations live in
// internal/index, internal/inference, internal/database and
// internal/ranking/diversity and are wired together by cmd/vidrank.
//
// # Composite Score
//
//	score = Alpha*cross + Beta*cos(anchor, candidate) + Delta*querySim
//	      + Gamma*lexical + ExactBoost*[lexical > 0]
//
// The cross-encoder term fails soft to 0. querySim is 0 unless the legacy
// self-similarity mode is configured, see QuerySimilarityMode.
//
// # Failure Policy
//
// Per-candidate failures (stale index entries, store errors) drop only that
// candidate. Missing users fail the feed with ErrUserNotFound. Users without
// an embedding receive an empty feed flagged as a cold start.
//
// # Thread Safety
//
// Engine is safe for concurrent use. It holds no mutable state beyond its
// injected collaborators.
package ranking

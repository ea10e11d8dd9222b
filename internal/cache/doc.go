// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package cache provides an in-memory LRU cache with TTL expiry.
//
// LRU is used by the embedding encoder to avoid re-encoding repeated query
// texts within a process. Entries expire lazily on access.
package cache

// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package models defines the shared data model for vidrank: videos, their
// transcribed segments and speech-recognition lattices, users, and the
// embedding records that link either kind of owner to a dense vector.
//
// Everything here is immutable from the ranking core's point of view. The
// store in internal/database produces these values and the ranking packages
// only read them.
package models

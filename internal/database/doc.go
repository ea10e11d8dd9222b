// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

/*
Package database provides the DuckDB-backed metadata store for vidrank.

The store holds users, videos, transcript segments and embedding records.
It implements the read side the ranking engine needs (ranking.MetadataStore),
the embedding listing used to build the dense index (index.EmbeddingSource),
and transactional ingestion of fixture files.

# Tables

  - users: feed recipients
  - videos: ranked items; tags stored as a JSON array
  - segments: transcript time ranges; the ASR lattice stored as JSON
  - embeddings: one vector per row as a little-endian float32 BLOB, owned
    by exactly one user or video

# Missing Rows

Lookups of absent rows return an error wrapping models.ErrNotFound so
callers can tell stale references from failures with errors.Is.

# Usage

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
	    return err
	}
	defer db.Close()

	video, err := db.GetVideo(ctx, 42)
	if errors.Is(err, models.ErrNotFound) {
	    // stale reference
	}
*/
package database

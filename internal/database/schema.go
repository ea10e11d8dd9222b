// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// tableCreationQueries returns the schema in creation order.
//
// Only primary keys are indexed: DuckDB rejects INSERT OR REPLACE on
// columns covered by a secondary ART index.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username VARCHAR NOT NULL,
			bio VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id BIGINT PRIMARY KEY,
			title VARCHAR NOT NULL,
			tags VARCHAR NOT NULL DEFAULT '[]',
			duration INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			id BIGINT PRIMARY KEY,
			video_id BIGINT NOT NULL,
			start_time DOUBLE NOT NULL,
			end_time DOUBLE NOT NULL,
			transcript VARCHAR NOT NULL DEFAULT '',
			asr_lattice VARCHAR,
			asr_confidence DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			id BIGINT PRIMARY KEY,
			owner_type VARCHAR NOT NULL,
			owner_id BIGINT NOT NULL,
			vector BLOB NOT NULL,
			dim INTEGER NOT NULL,
			is_primary BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
	}
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

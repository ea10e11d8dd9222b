// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/config"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	logger zerolog.Logger
}

// New opens the database and creates the schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	if cfg.Path != memoryPath {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}

	db.configureConnectionPool()

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db.logger.Debug().Str("path", cfg.Path).Int("threads", numThreads).Msg("database opened")
	return db, nil
}

// configureConnectionPool sizes the pool. An in-memory database lives in a
// single connection, so it must never be closed while the DB is open.
func (db *DB) configureConnectionPool() {
	if db.cfg.Path == memoryPath {
		db.conn.SetMaxOpenConns(1)
		db.conn.SetMaxIdleConns(1)
		db.conn.SetConnMaxLifetime(0)
		db.conn.SetConnMaxIdleTime(0)
		return
	}

	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Close checkpoints a file-backed database and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if db.cfg.Path != memoryPath {
		// Flush the WAL so the next start does not replay it
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			db.logger.Warn().Err(err).Msg("failed to checkpoint database before close")
		}
		cancel()
	}

	return db.conn.Close()
}

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint forces a WAL checkpoint.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Conn returns the underlying SQL connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// ensureContext applies a default 30s timeout to contexts without a deadline.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

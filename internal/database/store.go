// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vidrank/internal/database/query"
	"github.com/tomtom215/vidrank/internal/index"
	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

var (
	_ ranking.MetadataStore = (*DB)(nil)
	_ index.EmbeddingSource = (*DB)(nil)
)

const embeddingColumns = `id, owner_type, owner_id, vector, dim, is_primary, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// GetUser returns a user by id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, bio, created_at FROM users WHERE id = ?`, id)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Bio, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// GetVideo returns a video by id.
func (db *DB) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, tags, duration, created_at FROM videos WHERE id = ?`, id)

	var (
		v    models.Video
		tags string
	)
	if err := row.Scan(&v.ID, &v.Title, &tags, &v.Duration, &v.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
		return nil, fmt.Errorf("video %d has malformed tags: %w", id, err)
	}
	return &v, nil
}

// GetSegmentsForVideo returns a video's segments ordered by start time.
// A video without segments yields an empty slice.
func (db *DB) GetSegmentsForVideo(ctx context.Context, videoID int64) ([]models.Segment, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, video_id, start_time, end_time, transcript, asr_lattice, asr_confidence
		FROM segments
		WHERE video_id = ?
		ORDER BY start_time, id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments for video %d: %w", videoID, err)
	}
	defer func() { _ = rows.Close() }()

	segments := []models.Segment{}
	for rows.Next() {
		var (
			s          models.Segment
			lattice    sql.NullString
			confidence sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.VideoID, &s.Start, &s.End, &s.Transcript, &lattice, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		if lattice.Valid && lattice.String != "" {
			if err := json.Unmarshal([]byte(lattice.String), &s.Lattice); err != nil {
				return nil, fmt.Errorf("segment %d has malformed lattice: %w", s.ID, err)
			}
		}
		if confidence.Valid {
			c := confidence.Float64
			s.Confidence = &c
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate segments: %w", err)
	}
	return segments, nil
}

// GetEmbedding returns an embedding record by id.
func (db *DB) GetEmbedding(ctx context.Context, id int64) (*models.EmbeddingRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+embeddingColumns+` FROM embeddings WHERE id = ?`, id)

	rec, err := scanEmbedding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("embedding %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get embedding %d: %w", id, err)
	}
	return rec, nil
}

// policyOrder maps a selection policy to its ORDER BY clause.
var policyOrder = map[models.SelectionPolicy]string{
	models.SelectPrimary: "is_primary DESC, created_at DESC, id DESC",
	models.SelectLatest:  "created_at DESC, id DESC",
	models.SelectFirst:   "id ASC",
}

// GetOwnerEmbedding returns the embedding of an owner chosen by policy.
func (db *DB) GetOwnerEmbedding(ctx context.Context, ownerType models.OwnerType, ownerID int64, policy models.SelectionPolicy) (*models.EmbeddingRecord, error) {
	order, ok := policyOrder[policy]
	if !ok {
		return nil, fmt.Errorf("unknown selection policy %q", policy)
	}

	wb := query.NewWhereBuilder().
		AddEqual("owner_type", string(ownerType)).
		AddEqual("owner_id", ownerID)
	where, args := wb.BuildWithPrefix()

	row := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM embeddings %s ORDER BY %s LIMIT 1`, embeddingColumns, where, order),
		args...)

	rec, err := scanEmbedding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d embedding: %w", ownerType, ownerID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s %d embedding: %w", ownerType, ownerID, err)
	}
	return rec, nil
}

// ListEmbeddings returns every embedding of an owner type ordered by id.
// An empty ownerType lists all embeddings.
func (db *DB) ListEmbeddings(ctx context.Context, ownerType models.OwnerType) ([]models.EmbeddingRecord, error) {
	wb := query.NewWhereBuilder()
	if ownerType != "" {
		wb.AddEqual("owner_type", string(ownerType))
	}
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM embeddings %s ORDER BY id`, embeddingColumns, where),
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.EmbeddingRecord
	for rows.Next() {
		rec, err := scanEmbedding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}
	return records, nil
}

// scanEmbedding reads one row selected with embeddingColumns.
func scanEmbedding(row rowScanner) (*models.EmbeddingRecord, error) {
	var (
		rec       models.EmbeddingRecord
		ownerType string
		blob      []byte
	)
	if err := row.Scan(&rec.ID, &ownerType, &rec.OwnerID, &blob, &rec.Dim, &rec.Primary, &rec.CreatedAt); err != nil {
		return nil, err
	}

	vector, err := models.DecodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("embedding %d: %w", rec.ID, err)
	}
	rec.OwnerType = models.OwnerType(ownerType)
	rec.Vector = vector
	return &rec, nil
}

// TableCounts is the number of rows per table.
type TableCounts struct {
	Users      int `json:"users"`
	Videos     int `json:"videos"`
	Segments   int `json:"segments"`
	Embeddings int `json:"embeddings"`
}

// Counts returns the number of rows in each table.
func (db *DB) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	row := db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM videos),
		(SELECT COUNT(*) FROM segments),
		(SELECT COUNT(*) FROM embeddings)`)
	if err := row.Scan(&c.Users, &c.Videos, &c.Segments, &c.Embeddings); err != nil {
		return c, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}

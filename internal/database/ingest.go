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
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vidrank/internal/models"
)

// Fixture is a batch of records to load into the store.
type Fixture struct {
	Users      []models.User            `json:"users"`
	Videos     []models.Video           `json:"videos"`
	Segments   []models.Segment         `json:"segments"`
	Embeddings []models.EmbeddingRecord `json:"embeddings"`
}

// IngestStats counts the rows written by Ingest.
type IngestStats struct {
	Users      int `json:"users"`
	Videos     int `json:"videos"`
	Segments   int `json:"segments"`
	Embeddings int `json:"embeddings"`
}

// ReadFixture decodes a JSON fixture.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fx, nil
}

// Ingest writes a fixture in a single transaction. Rows with an existing
// id are replaced. Nothing is written if any record is invalid.
func (db *DB) Ingest(ctx context.Context, fx *Fixture) (stats IngestStats, err error) {
	if fx == nil {
		return stats, nil
	}
	if err = fx.validate(); err != nil {
		return stats, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	for i := range fx.Users {
		u := &fx.Users[i]
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO users (id, username, bio, created_at) VALUES (?, ?, ?, ?)`,
			u.ID, u.Username, u.Bio, orNow(u.CreatedAt, now)); err != nil {
			return stats, fmt.Errorf("failed to insert user %d: %w", u.ID, err)
		}
		stats.Users++
	}

	for i := range fx.Videos {
		v := &fx.Videos[i]
		tags := v.Tags
		if tags == nil {
			tags = []string{}
		}
		var tagJSON []byte
		if tagJSON, err = json.Marshal(tags); err != nil {
			return stats, fmt.Errorf("failed to encode tags of video %d: %w", v.ID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO videos (id, title, tags, duration, created_at) VALUES (?, ?, ?, ?, ?)`,
			v.ID, v.Title, string(tagJSON), v.Duration, orNow(v.CreatedAt, now)); err != nil {
			return stats, fmt.Errorf("failed to insert video %d: %w", v.ID, err)
		}
		stats.Videos++
	}

	for i := range fx.Segments {
		s := &fx.Segments[i]
		var lattice sql.NullString
		if len(s.Lattice) > 0 {
			var raw []byte
			if raw, err = json.Marshal(s.Lattice); err != nil {
				return stats, fmt.Errorf("failed to encode lattice of segment %d: %w", s.ID, err)
			}
			lattice = sql.NullString{String: string(raw), Valid: true}
		}
		var confidence sql.NullFloat64
		if s.Confidence != nil {
			confidence = sql.NullFloat64{Float64: *s.Confidence, Valid: true}
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO segments (id, video_id, start_time, end_time, transcript, asr_lattice, asr_confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.VideoID, s.Start, s.End, s.Transcript, lattice, confidence); err != nil {
			return stats, fmt.Errorf("failed to insert segment %d: %w", s.ID, err)
		}
		stats.Segments++
	}

	for i := range fx.Embeddings {
		e := &fx.Embeddings[i]
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO embeddings (id, owner_type, owner_id, vector, dim, is_primary, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.OwnerType), e.OwnerID, models.EncodeVector(e.Vector), len(e.Vector),
			e.Primary, orNow(e.CreatedAt, now)); err != nil {
			return stats, fmt.Errorf("failed to insert embedding %d: %w", e.ID, err)
		}
		stats.Embeddings++
	}

	if err = tx.Commit(); err != nil {
		return IngestStats{}, fmt.Errorf("failed to commit ingest: %w", err)
	}

	db.logger.Info().
		Int("users", stats.Users).
		Int("videos", stats.Videos).
		Int("segments", stats.Segments).
		Int("embeddings", stats.Embeddings).
		Msg("fixture ingested")
	return stats, nil
}

// NextEmbeddingID returns one past the largest stored embedding id.
func (db *DB) NextEmbeddingID(ctx context.Context) (int64, error) {
	var maxID sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(id) FROM embeddings`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to read max embedding id: %w", err)
	}
	if !maxID.Valid {
		return 1, nil
	}
	return maxID.Int64 + 1, nil
}

// validate checks records that the schema alone cannot reject.
func (fx *Fixture) validate() error {
	for i := range fx.Segments {
		s := &fx.Segments[i]
		if s.End < s.Start {
			return fmt.Errorf("segment %d ends before it starts", s.ID)
		}
	}
	for i := range fx.Embeddings {
		e := &fx.Embeddings[i]
		if !e.OwnerType.Valid() {
			return fmt.Errorf("embedding %d has unknown owner type %q", e.ID, e.OwnerType)
		}
		if len(e.Vector) == 0 {
			return fmt.Errorf("embedding %d has an empty vector", e.ID)
		}
		if e.Dim != 0 && e.Dim != len(e.Vector) {
			return fmt.Errorf("embedding %d declares dim %d but has %d values", e.ID, e.Dim, len(e.Vector))
		}
	}
	return nil
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}

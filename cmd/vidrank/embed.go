// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/vidrank/internal/database"
	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

// ownerEmbeddingLookup is the part of the store embedMissing reads.
type ownerEmbeddingLookup interface {
	GetOwnerEmbedding(ctx context.Context, ownerType models.OwnerType, ownerID int64, policy models.SelectionPolicy) (*models.EmbeddingRecord, error)
}

type owner struct {
	typ models.OwnerType
	id  int64
}

// embedMissing encodes fixture videos and users that have no embedding in
// the fixture or the store, and appends the new records to fx. Records get
// consecutive ids starting at nextID. Returns the number of records added.
func embedMissing(ctx context.Context, store ownerEmbeddingLookup, enc ranking.Encoder, fx *database.Fixture, nextID int64) (int, error) {
	have := make(map[owner]bool, len(fx.Embeddings))
	for i := range fx.Embeddings {
		have[owner{fx.Embeddings[i].OwnerType, fx.Embeddings[i].OwnerID}] = true
	}

	var (
		owners []owner
		texts  []string
	)
	consider := func(o owner, text string) error {
		if have[o] || strings.TrimSpace(text) == "" {
			return nil
		}
		_, err := store.GetOwnerEmbedding(ctx, o.typ, o.id, models.SelectLatest)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, models.ErrNotFound):
			return fmt.Errorf("check %s %d embedding: %w", o.typ, o.id, err)
		}
		have[o] = true
		owners = append(owners, o)
		texts = append(texts, text)
		return nil
	}

	for i := range fx.Videos {
		v := &fx.Videos[i]
		if err := consider(owner{models.OwnerVideo, v.ID}, videoText(v)); err != nil {
			return 0, err
		}
	}
	for i := range fx.Users {
		u := &fx.Users[i]
		if err := consider(owner{models.OwnerUser, u.ID}, userText(u)); err != nil {
			return 0, err
		}
	}

	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := enc.Encode(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("encode %d missing embeddings: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("encoder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	now := time.Now().UTC()
	for i, o := range owners {
		fx.Embeddings = append(fx.Embeddings, models.EmbeddingRecord{
			ID:        nextID + int64(i),
			OwnerType: o.typ,
			OwnerID:   o.id,
			Vector:    vectors[i],
			Dim:       len(vectors[i]),
			Primary:   true,
			CreatedAt: now,
		})
	}
	return len(owners), nil
}

// videoText is the text encoded for a video: its title and tags.
func videoText(v *models.Video) string {
	parts := append([]string{v.Title}, v.Tags...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// userText is the text encoded for a user: the bio, or the username.
func userText(u *models.User) string {
	if bio := strings.TrimSpace(u.Bio); bio != "" {
		return bio
	}
	return u.Username
}

// fixtureNextID returns an embedding id above both the stored and the
// fixture ids.
func fixtureNextID(fx *database.Fixture, storeNext int64) int64 {
	next := storeNext
	for i := range fx.Embeddings {
		if id := fx.Embeddings[i].ID; id >= next {
			next = id + 1
		}
	}
	return next
}

func readFixtureFile(path string) (*database.Fixture, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	return database.ReadFixture(f)
}

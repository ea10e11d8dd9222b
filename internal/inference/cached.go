// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/cache"
	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

const (
	tierMemory = "memory"
	tierDisk   = "disk"

	// embeddingKeyPrefix namespaces cache entries in the badger store
	embeddingKeyPrefix = "emb:"
)

// OpenCacheDB opens the badger store backing the persistent cache tier.
// An empty path opens an in-memory store.
func OpenCacheDB(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for embedding cache: %w", err)
	}
	return db, nil
}

// CacheOptions configures a CachedEncoder.
type CacheOptions struct {
	// Namespace separates entries of different models sharing one store.
	Namespace string

	// Size is the number of vectors kept in memory.
	Size int

	// TTL is how long an entry stays valid in both tiers.
	TTL time.Duration
}

// CachedEncoder caches vectors of the wrapped encoder in an in-memory LRU
// and, when a badger store is given, in a persistent tier. Only cache
// misses are sent to the wrapped encoder, in one batch.
type CachedEncoder struct {
	next      ranking.Encoder
	mem       *cache.LRU[models.Vector]
	db        *badger.DB
	namespace string
	ttl       time.Duration
	logger    zerolog.Logger
}

var _ ranking.Encoder = (*CachedEncoder)(nil)

// NewCachedEncoder wraps next. db may be nil to use the memory tier only.
// The caller owns db and closes it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCachedEncoder(next ranking.Encoder, db *badger.DB, opts CacheOptions, logger zerolog.Logger) *CachedEncoder {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &CachedEncoder{
		next:      next,
		mem:       cache.NewLRU[models.Vector](opts.Size, opts.TTL),
		db:        db,
		namespace: opts.Namespace,
		ttl:       opts.TTL,
		logger:    logger.With().Str("component", "encoder_cache").Logger(),
	}
}

// Encode returns cached vectors where available and encodes the rest.
func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([]models.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([]models.Vector, len(texts))
	keys := make([]string, len(texts))

	// missing maps a key to every position it fills; duplicate texts are encoded once
	missing := make(map[string][]int)
	var order []string

	for i, text := range texts {
		key := c.key(text)
		keys[i] = key

		if v, ok := c.lookup(key); ok {
			vectors[i] = v
			continue
		}
		if _, seen := missing[key]; !seen {
			order = append(order, key)
		}
		missing[key] = append(missing[key], i)
	}

	if len(order) == 0 {
		return vectors, nil
	}

	batch := make([]string, len(order))
	for i, key := range order {
		batch[i] = texts[missing[key][0]]
	}

	encoded, err := c.next.Encode(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(batch) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d texts", len(encoded), len(batch))
	}

	for i, key := range order {
		for _, pos := range missing[key] {
			vectors[pos] = encoded[i]
		}
		c.store(key, encoded[i])
	}

	return vectors, nil
}

// key derives a fixed-length cache key from the namespace and text.
func (c *CachedEncoder) key(text string) string {
	sum := sha256.Sum256([]byte(c.namespace + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedEncoder) lookup(key string) (models.Vector, bool) {
	if v, ok := c.mem.Get(key); ok {
		metrics.RecordCacheLookup(tierMemory, true)
		return v, true
	}
	metrics.RecordCacheLookup(tierMemory, false)

	if c.db == nil {
		return nil, false
	}

	var v models.Vector
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(embeddingKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := models.DecodeVector(val)
			if err != nil {
				return err
			}
			v = decoded
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Msg("embedding cache read failed")
		}
		metrics.RecordCacheLookup(tierDisk, false)
		return nil, false
	}

	metrics.RecordCacheLookup(tierDisk, true)
	c.mem.Add(key, v)
	return v, true
}

func (c *CachedEncoder) store(key string, v models.Vector) {
	c.mem.Add(key, v)

	if c.db == nil {
		return
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(embeddingKeyPrefix+key), models.EncodeVector(v)).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		// the memory tier still holds the vector
		c.logger.Warn().Err(err).Msg("embedding cache write failed")
	}
}

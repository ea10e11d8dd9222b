// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/config"
	"github.com/tomtom215/vidrank/internal/database"
	"github.com/tomtom215/vidrank/internal/index"
	"github.com/tomtom215/vidrank/internal/inference"
	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
	"github.com/tomtom215/vidrank/internal/ranking/diversity"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	db      *database.DB
	cacheDB *badger.DB
	encoder ranking.Encoder
}

// openApp opens the store and builds the encoder chain.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	encoder, cacheDB, err := buildEncoder(cfg, logger)
	if err != nil {
		closeQuietly(db)
		return nil, err
	}

	logger.Debug().
		Str("db_path", cfg.Database.Path).
		Int("dim", cfg.Index.Dim).
		Bool("encoder_remote", cfg.Encoder.URL != "").
		Bool("encoder_fallback", cfg.Encoder.Fallback).
		Msg("application initialized")

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		cacheDB: cacheDB,
		encoder: encoder,
	}, nil
}

// engine builds the dense index from stored video embeddings and assembles
// the ranking engine around it.
func (a *app) engine(ctx context.Context) (*ranking.Engine, error) {
	idx, err := index.Build(ctx, a.db, a.cfg.Index.Dim, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	cross, err := inference.NewHTTPCrossEncoder(inference.HTTPCrossEncoderConfig{
		URL:       a.cfg.CrossEncoder.URL,
		APIKey:    a.cfg.Encoder.APIKey,
		Timeout:   a.cfg.CrossEncoder.Timeout,
		RateLimit: a.cfg.CrossEncoder.RateLimit,
		Burst:     a.cfg.CrossEncoder.Burst,
		Breaker:   buildBreakerSettings(a.cfg.Breaker),
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cross encoder: %w", err)
	}

	engine, err := ranking.NewEngine(buildEngineConfig(&a.cfg.Ranking), ranking.Dependencies{
		Index:        idx,
		Store:        a.db,
		Encoder:      a.encoder,
		CrossEncoder: cross,
		Diversifier:  diversity.NewMMR(),
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking engine: %w", err)
	}
	return engine, nil
}

// Close releases the cache store and the database.
func (a *app) Close() error {
	var errs []error
	if a.cacheDB != nil {
		if err := a.cacheDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close embedding cache: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

func (a *app) closeLogged() {
	if err := a.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error closing application")
	}
}

// buildEncoder composes FallbackEncoder -> CachedEncoder -> HTTPEncoder.
// Layers are skipped when not configured. The returned badger store is nil
// when the cache is disabled or there is no remote encoder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildEncoder(cfg *config.Config, logger zerolog.Logger) (ranking.Encoder, *badger.DB, error) {
	var (
		encoder ranking.Encoder
		cacheDB *badger.DB
	)

	if cfg.Encoder.URL != "" {
		remote, err := inference.NewHTTPEncoder(inference.HTTPEncoderConfig{
			URL:      cfg.Encoder.URL,
			Provider: cfg.Encoder.Provider,
			Model:    cfg.Encoder.Model,
			APIKey:   cfg.Encoder.APIKey,
			Dim:      cfg.Index.Dim,
			Timeout:  cfg.Encoder.Timeout,
			Breaker:  buildBreakerSettings(cfg.Breaker),
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create encoder: %w", err)
		}
		encoder = remote

		if cfg.Encoder.Cache.Enabled {
			cacheDB, err = inference.OpenCacheDB(cfg.Encoder.Cache.Path)
			if err != nil {
				return nil, nil, err
			}
			encoder = inference.NewCachedEncoder(encoder, cacheDB, inference.CacheOptions{
				Namespace: cacheNamespace(cfg),
				Size:      cfg.Encoder.Cache.Size,
				TTL:       cfg.Encoder.Cache.TTL,
			}, logger)
		}
	}

	if cfg.Encoder.Fallback {
		encoder = inference.NewFallbackEncoder(encoder, cfg.Index.Dim, cfg.Encoder.FallbackSeed, logger)
	} else if encoder == nil {
		return nil, nil, errors.New("no encoder configured: set encoder.url or enable encoder.fallback")
	}

	return encoder, cacheDB, nil
}

// cacheNamespace keys cached vectors by everything that changes them.
func cacheNamespace(cfg *config.Config) string {
	return fmt.Sprintf("%s|%s|%s|%d", cfg.Encoder.Provider, cfg.Encoder.URL, cfg.Encoder.Model, cfg.Index.Dim)
}

// buildEngineConfig creates the ranking configuration from app config.
func buildEngineConfig(rc *config.RankingConfig) *ranking.Config {
	return &ranking.Config{
		Weights: ranking.Weights{
			Alpha:      rc.Alpha,
			Beta:       rc.Beta,
			Delta:      rc.Delta,
			Gamma:      rc.Gamma,
			ExactBoost: rc.ExactBoost,
		},
		Diversity: ranking.DiversityConfig{
			Penalty: rc.DiversityPenalty,
		},
		Recall: ranking.RecallConfig{
			SearchN: rc.SearchRecall,
			FeedN:   rc.FeedRecall,
		},
		Limits: ranking.LimitsConfig{
			DefaultK:          rc.DefaultK,
			MaxK:              rc.MaxK,
			LookupConcurrency: rc.LookupConcurrency,
			ScoreConcurrency:  rc.ScoreConcurrency,
		},
		EmbeddingPolicy: models.SelectionPolicy(rc.EmbeddingPolicy),
		QuerySimilarity: ranking.QuerySimilarityMode(rc.QuerySimilarity),
	}
}

// buildBreakerSettings maps breaker config to inference settings.
func buildBreakerSettings(bc config.BreakerConfig) inference.BreakerSettings {
	return inference.BreakerSettings{
		MaxRequests:  bc.MaxRequests,
		Interval:     bc.Interval,
		Timeout:      bc.Timeout,
		MinRequests:  bc.MinRequests,
		FailureRatio: bc.FailureRatio,
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
func closeQuietly(c interface{ Close() error }) {
	if c != nil {
		_ = c.Close()
	}
}

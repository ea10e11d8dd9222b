// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/ranking"
)

const serviceCrossEncoder = "cross_encoder"

// HTTPCrossEncoderConfig configures an HTTPCrossEncoder.
type HTTPCrossEncoderConfig struct {
	// URL is the cross-encoder endpoint.
	URL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Timeout bounds a single request.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. 0 disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size.
	Burst int

	// Breaker configures the circuit breaker.
	Breaker BreakerSettings
}

// HTTPCrossEncoder scores (query, text) pairs with a remote service.
type HTTPCrossEncoder struct {
	url     string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *breaker[float64]
	logger  zerolog.Logger
}

var _ ranking.CrossEncoder = (*HTTPCrossEncoder)(nil)

// crossEncoderRequest holds a single [query, text] pair.
type crossEncoderRequest struct {
	Inputs [][2]string `json:"inputs"`
}

// labeledScore is the text-classification response shape.
type labeledScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewHTTPCrossEncoder creates a cross-encoder client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPCrossEncoder(cfg HTTPCrossEncoderConfig, logger zerolog.Logger) (*HTTPCrossEncoder, error) {
	if cfg.URL == "" {
		return nil, errors.New("cross encoder url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger = logger.With().Str("component", "cross_encoder").Logger()

	return &HTTPCrossEncoder{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		breaker: newBreaker[float64]("cross-encoder-api", cfg.Breaker, logger),
		logger:  logger,
	}, nil
}

// Score returns the relevance of text to query. Empty text scores 0 without
// a request.
func (c *HTTPCrossEncoder) Score(ctx context.Context, query, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	score, err := c.breaker.execute(func() (float64, error) {
		return c.request(ctx, query, text)
	})
	metrics.RecordExternalCall(serviceCrossEncoder, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("cross encoder: %w", err)
	}

	return score, nil
}

func (c *HTTPCrossEncoder) request(ctx context.Context, query, text string) (float64, error) {
	var raw json.RawMessage
	body := crossEncoderRequest{Inputs: [][2]string{{query, text}}}
	if err := postJSON(ctx, c.client, c.url, c.apiKey, body, &raw); err != nil {
		return 0, err
	}
	return parseScore(raw)
}

// parseScore reads the first score of a response. Accepted shapes are
// [0.93], [{"label": "...", "score": 0.93}] and a bare 0.93.
// An empty array scores 0.
func parseScore(raw json.RawMessage) (float64, error) {
	var scores []float64
	if err := json.Unmarshal(raw, &scores); err == nil {
		if len(scores) == 0 {
			return 0, nil
		}
		return scores[0], nil
	}

	var labeled []labeledScore
	if err := json.Unmarshal(raw, &labeled); err == nil {
		if len(labeled) == 0 {
			return 0, nil
		}
		return labeled[0].Score, nil
	}

	var single float64
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}

	return 0, fmt.Errorf("unrecognized score response: %.64s", string(raw))
}

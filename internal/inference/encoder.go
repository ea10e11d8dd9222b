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
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/models"
	"github.com/tomtom215/vidrank/internal/ranking"
)

const serviceEncoder = "encoder"

// Embedding endpoint request formats.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
)

// HTTPEncoderConfig configures an HTTPEncoder.
type HTTPEncoderConfig struct {
	// URL is the embedding endpoint.
	URL string

	// Provider is ProviderHuggingFace or ProviderOllama.
	Provider string

	// Model is sent with ollama requests.
	Model string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Dim is the expected vector dimension. 0 accepts any consistent dimension.
	Dim int

	// Timeout bounds a single request.
	Timeout time.Duration

	// Breaker configures the circuit breaker.
	Breaker BreakerSettings
}

// HTTPEncoder embeds texts with a remote service.
type HTTPEncoder struct {
	url      string
	provider string
	model    string
	apiKey   string
	dim      int
	client   *http.Client
	breaker  *breaker[[]models.Vector]
	logger   zerolog.Logger
}

var _ ranking.Encoder = (*HTTPEncoder)(nil)

// huggingFaceRequest is the HuggingFace feature-extraction request body.
type huggingFaceRequest struct {
	Inputs []string `json:"inputs"`
}

// ollamaRequest is the Ollama /api/embed request body.
type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse is returned by both providers.
type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewHTTPEncoder creates an encoder for the configured endpoint.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPEncoder(cfg HTTPEncoderConfig, logger zerolog.Logger) (*HTTPEncoder, error) {
	if cfg.URL == "" {
		return nil, errors.New("encoder url is required")
	}
	switch cfg.Provider {
	case "", ProviderHuggingFace:
		cfg.Provider = ProviderHuggingFace
	case ProviderOllama:
		if cfg.Model == "" {
			return nil, errors.New("ollama encoder requires a model")
		}
	default:
		return nil, fmt.Errorf("unknown encoder provider %q", cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	logger = logger.With().Str("component", "encoder").Logger()

	return &HTTPEncoder{
		url:      cfg.URL,
		provider: cfg.Provider,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		dim:      cfg.Dim,
		client:   &http.Client{Timeout: cfg.Timeout},
		breaker:  newBreaker[[]models.Vector]("encoder-api", cfg.Breaker, logger),
		logger:   logger,
	}, nil
}

// Encode returns one vector per text, in input order.
func (e *HTTPEncoder) Encode(ctx context.Context, texts []string) ([]models.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	vectors, err := e.breaker.execute(func() ([]models.Vector, error) {
		return e.request(ctx, texts)
	})
	metrics.RecordExternalCall(serviceEncoder, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("encode %d texts: %w", len(texts), err)
	}

	e.logger.Debug().Int("texts", len(texts)).Dur("duration", time.Since(start)).Msg("texts encoded")
	return vectors, nil
}

func (e *HTTPEncoder) request(ctx context.Context, texts []string) ([]models.Vector, error) {
	var body interface{}
	if e.provider == ProviderOllama {
		body = ollamaRequest{Model: e.model, Input: texts}
	} else {
		body = huggingFaceRequest{Inputs: texts}
	}

	var resp embeddingResponse
	if err := postJSON(ctx, e.client, e.url, e.apiKey, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	dim := e.dim
	vectors := make([]models.Vector, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) == 0 || len(emb) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(emb), dim)
		}
		vectors[i] = emb
	}

	return vectors, nil
}

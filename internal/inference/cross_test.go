// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package inference

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestHTTPCrossEncoder_Score(t *testing.T) {
	var gotBody crossEncoderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`[0.93]`))
	}))
	defer server.Close()

	ce, err := NewHTTPCrossEncoder(HTTPCrossEncoderConfig{URL: server.URL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPCrossEncoder() error = %v", err)
	}

	score, err := ce.Score(context.Background(), "how to bake bread", "knead the dough")
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 0.93 {
		t.Errorf("Score() = %v, want 0.93", score)
	}

	if len(gotBody.Inputs) != 1 || gotBody.Inputs[0][0] != "how to bake bread" || gotBody.Inputs[0][1] != "knead the dough" {
		t.Errorf("request inputs = %v", gotBody.Inputs)
	}
}

func TestHTTPCrossEncoder_EmptyTextSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[1]`))
	}))
	defer server.Close()

	ce, err := NewHTTPCrossEncoder(HTTPCrossEncoderConfig{URL: server.URL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPCrossEncoder() error = %v", err)
	}

	for _, text := range []string{"", "   "} {
		score, err := ce.Score(context.Background(), "query", text)
		if err != nil || score != 0 {
			t.Errorf("Score(%q) = %v, %v; want 0, nil", text, score, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("server calls = %d, want 0", calls.Load())
	}
}

func TestHTTPCrossEncoder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	ce, err := NewHTTPCrossEncoder(HTTPCrossEncoderConfig{URL: server.URL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPCrossEncoder() error = %v", err)
	}

	_, err = ce.Score(context.Background(), "q", "text")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("err = %v, want StatusError 429", err)
	}
}

func TestHTTPCrossEncoder_RateLimitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[0.5]`))
	}))
	defer server.Close()

	ce, err := NewHTTPCrossEncoder(HTTPCrossEncoderConfig{
		URL:       server.URL,
		RateLimit: 0.001,
		Burst:     1,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPCrossEncoder() error = %v", err)
	}

	if _, err := ce.Score(context.Background(), "q", "first"); err != nil {
		t.Fatalf("first Score() error = %v", err)
	}

	// the bucket is empty and a canceled context cannot wait for a token
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ce.Score(ctx, "q", "second"); err == nil {
		t.Error("Score() should fail when the limiter cannot wait")
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "float array", raw: `[0.71, 0.2]`, want: 0.71},
		{name: "empty array", raw: `[]`, want: 0},
		{name: "labeled scores", raw: `[{"label": "LABEL_0", "score": 0.42}]`, want: 0.42},
		{name: "bare number", raw: `-1.5`, want: -1.5},
		{name: "object", raw: `{"score": 1}`, wantErr: true},
		{name: "string", raw: `"high"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseScore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewHTTPCrossEncoder_RequiresURL(t *testing.T) {
	if _, err := NewHTTPCrossEncoder(HTTPCrossEncoderConfig{}, zerolog.Nop()); err == nil {
		t.Error("NewHTTPCrossEncoder() should fail without url")
	}
}

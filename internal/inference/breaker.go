// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package inference

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/vidrank/internal/metrics"
)

// BreakerSettings configures the circuit breaker around an inference client.
type BreakerSettings struct {
	// MaxRequests is the number of trial requests allowed when half-open.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before half-opening.
	Timeout time.Duration

	// MinRequests is the number of requests needed before the failure
	// ratio is considered.
	MinRequests uint32

	// FailureRatio opens the breaker when reached.
	FailureRatio float64
}

// DefaultBreakerSettings returns the breaker settings used when none are given.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// breaker wraps gobreaker with metrics and logging.
//
// The breaker uses real time for its interval and timeout. Tests that need
// an open breaker trip it with failing requests rather than faking time.
type breaker[T any] struct {
	cb     *gobreaker.CircuitBreaker[T]
	name   string
	logger zerolog.Logger
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBreaker[T any](name string, s BreakerSettings, logger zerolog.Logger) *breaker[T] {
	if s.MaxRequests == 0 {
		s = DefaultBreakerSettings()
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	b := &breaker[T]{name: name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				logger.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logger.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return b
}

// execute runs fn with circuit breaker protection.
func (b *breaker[T]) execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Debug().Str("breaker", b.name).Err(err).Msg("request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return result, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// state returns the current breaker state.
func (b *breaker[T]) state() gobreaker.State {
	return b.cb.State()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

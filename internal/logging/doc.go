// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package logging provides zerolog-based logging for vidrank.
//
// There is one process-wide logger, configured once at startup with Init.
// Long-lived components do not read the global; they receive a
// zerolog.Logger at construction and derive a child with a component field:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	engine, err := ranking.NewEngine(cfg, deps, logging.Logger())
//
// Request-scoped code uses Ctx to pick up the request and correlation ids
// stored in the context:
//
//	ctx = logging.ContextWithNewRequestID(ctx)
//	logging.Ctx(ctx).Info().Int("k", k).Msg("search started")
//
// # Configuration
//
// Environment variables (read through the config package):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller info (default: false)
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Ctx(ctx).Info().Str("key", "value").Msg("message")  // Correct
//	logging.Ctx(ctx).Info().Str("key", "value")                 // WRONG - log not emitted
package logging

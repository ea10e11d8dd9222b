// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the process. Field names in
// error messages come from koanf struct tags, so a failure on
// Config.Encoder.URL is reported as "encoder.url", the same key a user
// writes in config.yaml.
//
// Example usage:
//
//	type EncoderConfig struct {
//	    URL     string        `koanf:"url" validate:"required,url"`
//	    Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
package validation

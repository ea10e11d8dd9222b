// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/vidrank/internal/logging"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

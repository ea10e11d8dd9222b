// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/vidrank/internal/config"
	"github.com/tomtom215/vidrank/internal/database"
	"github.com/tomtom215/vidrank/internal/logging"
	"github.com/tomtom215/vidrank/internal/metrics"
	"github.com/tomtom215/vidrank/internal/ranking"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
	metricsOut string
}

// loadConfig loads the configuration and initializes the global logger.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "vidrank",
		Short: "Video search and feed ranking",
		Long: `Vidrank ranks videos for free-text search and personalized feeds
using dense recall, cross-encoder relevance, ASR lattice matching
and MMR diversification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if opts.metricsOut == "" {
				return nil
			}
			return metrics.WriteTextfile(opts.metricsOut)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.metricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile on exit")

	rootCmd.AddCommand(
		newSearchCmd(opts),
		newFeedCmd(opts),
		newIngestCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank videos for a text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx := requestContext(cmd)
			a, err := openApp(cfg, logging.Logger())
			if err != nil {
				return err
			}
			defer a.closeLogged()

			engine, err := a.engine(ctx)
			if err != nil {
				return err
			}

			resp, err := engine.Search(ctx, ranking.SearchRequest{
				Query: strings.Join(args, " "),
				K:     k,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVarP(&k, "limit", "k", 0, "Number of results (default from config)")
	return cmd
}

func newFeedCmd(opts *rootOptions) *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "feed <user-id>",
		Short: "Build a personalized feed for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx := requestContext(cmd)
			a, err := openApp(cfg, logging.Logger())
			if err != nil {
				return err
			}
			defer a.closeLogged()

			engine, err := a.engine(ctx)
			if err != nil {
				return err
			}

			resp, err := engine.Feed(ctx, ranking.FeedRequest{UserID: userID, K: k})
			if err != nil {
				return fmt.Errorf("feed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVarP(&k, "limit", "k", 0, "Number of items (default from config)")
	return cmd
}

// ingestResult is printed by the ingest command.
type ingestResult struct {
	Ingested database.IngestStats `json:"ingested"`
	Embedded int                  `json:"embedded"`
	Totals   database.TableCounts `json:"totals"`
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var embedMissingFlag bool

	cmd := &cobra.Command{
		Use:   "ingest <fixture.json>",
		Short: "Load users, videos, segments and embeddings from a JSON fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := readFixtureFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx := requestContext(cmd)
			a, err := openApp(cfg, logging.Logger())
			if err != nil {
				return err
			}
			defer a.closeLogged()

			result := ingestResult{}
			if embedMissingFlag {
				nextID, err := a.db.NextEmbeddingID(ctx)
				if err != nil {
					return err
				}
				nextID = fixtureNextID(fx, nextID)
				if result.Embedded, err = embedMissing(ctx, a.db, a.encoder, fx, nextID); err != nil {
					return err
				}
			}

			if result.Ingested, err = a.db.Ingest(ctx, fx); err != nil {
				return err
			}
			if result.Totals, err = a.db.Counts(ctx); err != nil {
				return err
			}
			logging.Ctx(ctx).Info().
				Int("videos", result.Ingested.Videos).
				Int("embedded", result.Embedded).
				Msg("ingest complete")
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&embedMissingFlag, "embed-missing", false, "Encode videos and users that have no embedding")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"version": version,
				"commit":  commit,
				"date":    buildDate,
			})
		},
	}
}

// requestContext tags the command context with fresh request and
// correlation ids.
func requestContext(cmd *cobra.Command) context.Context {
	ctx := logging.ContextWithNewCorrelationID(cmd.Context())
	return logging.ContextWithNewRequestID(ctx)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

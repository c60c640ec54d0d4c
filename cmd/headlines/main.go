// Package main is the headlines CLI: an HTTP server and a one-shot runner for
// the news aggregation pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deusflow/headlines/internal/app"
	"github.com/deusflow/headlines/internal/config"
	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:           "headlines",
	Short:         "RSS headline aggregator",
	Long:          "headlines fetches many RSS feeds, rewrites each item as a neutral headline, groups stories reported by several outlets and writes a short overview.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, configures logging and builds the aggregator.
func setup() (*config.Config, *app.Aggregator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(os.Stderr, cfg.Debug, cfg.LogFormat)

	sources, err := app.LoadSources(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded sources", "count", len(sources))

	agg := app.New(cfg, sources,
		app.WithMetrics(metrics.Global),
		app.WithLogger(logger.Logger),
	)
	return cfg, agg, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run the pipeline once and print the JSON payload",
	RunE:  runAggregate,
}

var (
	aggregatePage     int
	aggregatePageSize int
	aggregateOutput   string
)

func init() {
	aggregateCmd.Flags().IntVarP(&aggregatePage, "page", "p", 1, "Result page (1-based)")
	aggregateCmd.Flags().IntVarP(&aggregatePageSize, "page-size", "s", 0, "Items per page (default: NEWS_PAGE_SIZE)")
	aggregateCmd.Flags().StringVarP(&aggregateOutput, "out", "o", "", "Write the payload to this file instead of stdout")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfg, agg, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	resp, err := agg.Aggregate(ctx, aggregatePage, aggregatePageSize)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	data = append(data, '\n')

	if aggregateOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(aggregateOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", aggregateOutput, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d groups to %s\n", len(resp.Groups), aggregateOutput)
	return nil
}

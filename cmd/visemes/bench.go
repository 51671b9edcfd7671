package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/bench"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		text      string
		runs      int
		format    string
		threshold time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark analysis latency and throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("--text is required for bench")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			dict, closeDict, err := openDictionary(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = closeDict() }()

			// Per-run pipeline logs would dominate the timings.
			quiet := slog.New(slog.DiscardHandler)
			a := analysis.New(dict, analysis.WithLogger(quiet))

			results, err := bench.Run(cmd.Context(), a, text, runs)
			if err != nil {
				return err
			}

			stats := bench.ComputeStats(bench.Durations(results))

			switch format {
			case "json":
				bench.FormatJSON(results, stats, cmd.OutOrStdout())
			default:
				bench.FormatTable(results, stats, cmd.OutOrStdout())
			}

			return bench.CheckMeanThreshold(stats.Mean, threshold)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to analyze for each run (required)")
	cmd.Flags().IntVar(&runs, "runs", 20, "Number of analysis runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().DurationVar(&threshold, "max-mean", 0, "Exit non-zero if mean latency exceeds this duration (0 = disabled)")

	return cmd
}

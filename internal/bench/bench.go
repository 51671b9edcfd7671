// Package bench provides benchmarking primitives for the visemes bench command.
package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-visemes/internal/analysis"
)

// Analyzer is the part of analysis.Analyzer a benchmark drives.
type Analyzer interface {
	Analyze(ctx context.Context, text string) analysis.Result
}

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and output size of a single analysis run.
type RunResult struct {
	Index      int
	Cold       bool // true for the first run (cold-start)
	Duration   time.Duration
	Words      int
	Units      int
	Throughput float64 // units per second
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Durations extracts the run durations in order.
func Durations(runs []RunResult) []time.Duration {
	out := make([]time.Duration, len(runs))
	for i, r := range runs {
		out[i] = r.Duration
	}
	return out
}

// CalcThroughput returns units produced per second.
// Returns 0 if d is zero to avoid division by zero.
func CalcThroughput(units int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(units) / d.Seconds()
}

// Run analyzes text runs times and records each run. It stops early when ctx
// is cancelled and returns the runs completed so far with ctx's error.
func Run(ctx context.Context, a Analyzer, text string, runs int) ([]RunResult, error) {
	results := make([]RunResult, 0, runs)

	for i := range runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		res := a.Analyze(ctx, text)
		dur := time.Since(start)

		results = append(results, RunResult{
			Index:      i,
			Cold:       i == 0,
			Duration:   dur,
			Words:      len(res.Detailed),
			Units:      len(res.Sequence),
			Throughput: CalcThroughput(len(res.Sequence), dur),
		})
	}

	return results, nil
}

// ---------------------------------------------------------------------------
// Latency threshold gate
// ---------------------------------------------------------------------------

// CheckMeanThreshold returns an error if mean > threshold.
// A threshold of 0 disables the gate.
func CheckMeanThreshold(mean, threshold time.Duration) error {
	if threshold <= 0 {
		return nil
	}
	if mean > threshold {
		return fmt.Errorf("mean latency %v exceeds threshold %v", mean, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %6s  %6s  %12s\n", "Run", "Cold", "µs", "Words", "Units", "Units/s")
	fmt.Fprintln(sb, strings.Repeat("-", 54))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.1f  %6d  %6d  %12.0f\n",
			r.Index+1,
			cold,
			micros(r.Duration),
			r.Words,
			r.Units,
			r.Throughput,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 54))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  (min)\n", "", "", micros(stats.Min))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  (mean)\n", "", "", micros(stats.Mean))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  (max)\n", "", "", micros(stats.Max))

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	DurationUS float64 `json:"duration_us"`
	Words      int     `json:"words"`
	Units      int     `json:"units"`
	Throughput float64 `json:"units_per_sec"`
}

type jsonStats struct {
	MinUS  float64 `json:"min_us"`
	MeanUS float64 `json:"mean_us"`
	MaxUS  float64 `json:"max_us"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinUS:  micros(stats.Min),
			MeanUS: micros(stats.Mean),
			MaxUS:  micros(stats.Max),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			DurationUS: micros(r.Duration),
			Words:      r.Words,
			Units:      r.Units,
			Throughput: r.Throughput,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}

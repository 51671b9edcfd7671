package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/text"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// demoSentences exercise word lookup, every pause class and the spell-out
// fallback.
var demoSentences = []string{
	"Hello world",
	"The quick brown fox jumps over the lazy dog",
	"How are you today?",
	"First, let me think about that. Well, I believe the answer is clear.",
	"Stop - and listen to this important message!",
	"Hello, my name is John. I'm a software developer.",
}

func newAnalyzeCmd() *cobra.Command {
	var file string
	var format string
	var lines bool
	var demo bool

	cmd := &cobra.Command{
		Use:   "analyze [TEXT...]",
		Short: "Convert text to a viseme sequence",
		Long: "Convert text to a viseme sequence. Text comes from the arguments, " +
			"--file, or stdin. With --lines every non-empty input line is analyzed " +
			"separately and JSON output becomes one object per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if format != formatJSON && format != formatText {
				return fmt.Errorf("unsupported --format %q (want json|text)", format)
			}

			var inputs []string
			if demo {
				inputs = demoSentences
			} else {
				input, err := readAnalyzeInput(args, file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if lines {
					inputs = splitLines(input)
				} else {
					inputs = []string{input}
				}
			}

			dict, closeDict, err := openDictionary(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = closeDict() }()

			a := analysis.New(dict, analysis.WithLogger(slog.Default()))
			results, err := a.AnalyzeAll(cmd.Context(), inputs, cfg.Analysis.Workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatText {
				return renderText(out, inputs, results)
			}
			if len(results) == 1 && !lines && !demo {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results[0])
			}
			enc := json.NewEncoder(out)
			for _, res := range results {
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read text from file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json|text")
	cmd.Flags().BoolVar(&lines, "lines", false, "Analyze each input line separately")
	cmd.Flags().BoolVar(&demo, "demo", false, "Analyze the built-in demo sentences")

	return cmd
}

// readAnalyzeInput returns the joined args, the contents of file, or all of
// stdin, in that order of preference.
func readAnalyzeInput(args []string, file string, stdin io.Reader) (string, error) {
	var raw string
	switch {
	case len(args) > 0:
		if file != "" {
			return "", errors.New("pass text as arguments or --file, not both")
		}
		raw = strings.Join(args, " ")
	case file != "" && file != "-":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		raw = string(b)
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}

	cleaned, err := text.CleanInput(raw)
	if err != nil {
		return "", fmt.Errorf("no input text: %w", err)
	}
	return cleaned, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

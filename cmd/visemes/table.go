package main

import (
	"encoding/json"
	"fmt"

	"github.com/example/go-visemes/internal/viseme"
	"github.com/spf13/cobra"
)

func newTableCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the phone to viseme table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case formatText:
				return renderTable(cmd.OutOrStdout())
			case formatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(viseme.Table())
			default:
				return fmt.Errorf("unsupported --format %q (want json|text)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: json|text")

	return cmd
}

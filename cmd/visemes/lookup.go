package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/go-visemes/internal/pronounce"
	"github.com/example/go-visemes/internal/text"
	"github.com/spf13/cobra"
)

type lookupEntry struct {
	Word           string     `json:"word"`
	Pronunciations [][]string `json:"pronunciations"`
	Fallback       []string   `json:"fallback,omitempty"`
}

func newLookupCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "lookup WORD...",
		Short: "Print every dictionary pronunciation of each word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if format != formatJSON && format != formatText {
				return fmt.Errorf("unsupported --format %q (want json|text)", format)
			}

			dict, _, err := loadDictionary(cfg)
			if err != nil {
				return err
			}

			entries := make([]lookupEntry, 0, len(args))
			for _, word := range args {
				key := text.NormalizeWord(word)
				prons, err := dict.Lookup(key)
				if err != nil {
					return fmt.Errorf("lookup %q: %w", word, err)
				}
				e := lookupEntry{Word: word, Pronunciations: prons}
				if e.Pronunciations == nil {
					e.Pronunciations = [][]string{}
					e.Fallback = pronounce.SpellOut(key)
				}
				entries = append(entries, e)
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, e := range entries {
				if len(e.Pronunciations) == 0 {
					fmt.Fprintf(out, "%s: not found, spelled out as %s\n", e.Word, strings.Join(e.Fallback, " "))
					continue
				}
				for i, p := range e.Pronunciations {
					fmt.Fprintf(out, "%s[%d]: %s\n", e.Word, i, strings.Join(p, " "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: json|text")

	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/example/go-visemes/internal/cmudict"
	"github.com/example/go-visemes/internal/doctor"
	"github.com/example/go-visemes/internal/server"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var probeWords []string
	var serverAddr string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run dictionary and viseme table checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			dcfg := doctor.Config{
				DictionaryPath: cfg.Dictionary.Path,
				LoadDictionary: func() (*cmudict.Dict, string, error) {
					return loadDictionary(cfg)
				},
			}
			if cmd.Flags().Changed("probe") {
				dcfg.ProbeWords = probeWords
			}

			result := doctor.Run(dcfg, out)

			if serverAddr != "" {
				if err := server.ProbeHTTP(serverAddr); err != nil {
					result.AddFailure(fmt.Sprintf("server %s: %v", serverAddr, err))
					_, _ = fmt.Fprintf(out, "%s server %s: %v\n", doctor.FailMark, serverAddr, err)
				} else {
					_, _ = fmt.Fprintf(out, "%s server %s: ok\n", doctor.PassMark, serverAddr)
				}
			}

			if result.Failed() {
				for _, f := range result.Failures() {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&probeWords, "probe", nil, "Words that must be in the dictionary (default hello,world)")
	cmd.Flags().StringVar(&serverAddr, "server", "", "Also probe a running server at this address")

	return cmd
}

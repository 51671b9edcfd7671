package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the visemes HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			logger := slog.Default()
			dict, closeDict, err := openDictionary(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeDict() }()

			a := analysis.New(dict, analysis.WithLogger(logger))
			srv := server.New(cfg, a).
				WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second).
				WithLogger(logger).
				WithBannerOutput(cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}

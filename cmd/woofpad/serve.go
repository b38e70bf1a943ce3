package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/app"
	"github.com/rovshanmuradov/woofpad/internal/utils/logger"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine with its HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			log, err := logger.New(&cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := app.New(cfg, log.WithComponent("woofpad"))
			if err != nil {
				log.LogError("Failed to initialize", err)
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Starting woofpad",
				zap.String("addr", cfg.Server.Addr),
				zap.String("base_denom", cfg.Genesis.BaseTokenDenom))
			if err := a.Run(ctx); err != nil {
				log.LogError("Server stopped with error", err)
				return err
			}
			log.Info("Stopped")
			return nil
		},
	}
}

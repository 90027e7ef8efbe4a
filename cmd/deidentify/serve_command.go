package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/raaihank/deidentify/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deidentification engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}

	cmd.Flags().Int("port", 8080, "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, ctx *commandContext) error {
	cfg, log, engine, err := ctx.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("Starting deidentify",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
	)

	srv := server.New(cfg, engine, log, version)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start(signalCtx)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error("Server error", zap.Error(err))
			return err
		}
		return nil
	case <-signalCtx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Failed to shutdown server gracefully", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server shutdown complete")
	return nil
}

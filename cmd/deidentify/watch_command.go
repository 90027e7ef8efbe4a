package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raaihank/deidentify/internal/batch"
	"github.com/raaihank/deidentify/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Deidentify markdown files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, ctx, args[0])
		},
	}

	cmd.Flags().StringP("output-dir", "o", "", "Directory for deidentified files (default: the watched directory)")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period before a changed file is processed")

	return cmd
}

func runWatch(cmd *cobra.Command, ctx *commandContext, dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", batch.ErrPathNotFound, dir)
	}

	cfg, log, engine, err := ctx.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline := batch.NewPipeline(engine, cfg.Output, log.WithComponent("batch"))
	w, err := watch.New(dir, pipeline, cfg.Watch.Debounce, cfg.Output.InPlace, log.WithComponent("watch"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w.OnProcessed = func(fr *batch.FileResult, err error) {
		if err != nil {
			fmt.Fprintf(out, "failed: %v\n", err)
			return
		}
		total := 0
		for _, f := range fr.Findings {
			total += f.Count
		}
		fmt.Fprintf(out, "%s -> %s (%d replacement(s))\n", fr.Input, fr.Output, total)
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", dir)
	if err := w.Run(signalCtx); err != nil {
		log.Error("Watcher failed", zap.String("directory", dir), zap.Error(err))
		return err
	}
	return nil
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/raaihank/deidentify/internal/batch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "deidentify <input_path>",
		Short: "Replace personal information in markdown transcripts with consistent placeholders",
		Long: `Deidentify scrubs emails, phone numbers, names and ID numbers from markdown
files. A single file or every markdown file in a directory is processed, and
the same value always receives the same placeholder within one run.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (json, console, auto)")

	rootCmd.Flags().StringP("output-dir", "o", "", "Directory for deidentified files (default: next to each input)")
	rootCmd.Flags().BoolP("in-place", "i", false, "Overwrite the input files")
	rootCmd.Flags().Bool("dry-run", false, "Process without writing any output")

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}

func runBatch(cmd *cobra.Command, ctx *commandContext, input string) error {
	cfg, log, engine, err := ctx.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline := batch.NewPipeline(engine, cfg.Output, log.WithComponent("batch"))
	result, err := pipeline.Run(signalCtx, input)
	if err != nil {
		log.Error("Deidentification failed", zap.String("input", input), zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSummary(result))
	for _, f := range result.Failed {
		fmt.Fprintf(out, "failed: %s\n", f.Error())
	}
	fmt.Fprintln(out, summaryLine(result, cfg.Output.DryRun))

	return nil
}

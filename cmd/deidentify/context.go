package main

import (
	"fmt"
	"strings"

	"github.com/raaihank/deidentify/internal/config"
	"github.com/raaihank/deidentify/internal/logger"
	"github.com/raaihank/deidentify/internal/privacy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type commandContext struct {
	configFlag  string
	verboseFlag bool
}

// load resolves configuration for cmd and builds the logger and engine
func (c *commandContext) load(cmd *cobra.Command) (*config.Config, *logger.Logger, *privacy.Engine, error) {
	cfg, err := config.Load(strings.TrimSpace(c.configFlag), cmd.Flags())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if c.verboseFlag {
		cfg.Logging.Level = "debug"
	}

	logCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		logCfg.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	log.Debug("Configuration loaded",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Strings("categories", cfg.Privacy.Categories),
		zap.Bool("dry_run", cfg.Output.DryRun),
	)

	engine, err := privacy.New(cfg.Privacy, log.WithComponent("privacy"))
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("create engine: %w", err)
	}

	return cfg, log, engine, nil
}

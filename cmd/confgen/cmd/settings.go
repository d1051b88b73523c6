package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ConfGen/pkg/config"
	"github.com/ChrisMcGann/ConfGen/pkg/logging"
)

// loadSettings reads the configuration file and applies the flags the user set.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("min-ring-size") {
		cfg.Generator.MinMacroRingSize = minRingSize
	}
	if flags.Changed("top-n") {
		cfg.Generator.TopN = topN
	}
	if flags.Changed("energy-window") {
		cfg.Generator.EnergyWindow = energyWindow
	}
	if flags.Changed("method") {
		cfg.Crest.Method = strings.ToLower(strings.TrimSpace(crestMethod))
	}
	if flags.Changed("cpus") {
		cfg.Crest.CPUs = cpus
	}
	if flags.Changed("db") {
		cfg.Output.Database = strings.TrimSpace(databaseFile)
	}
	if flags.Changed("plot") {
		cfg.Output.Plot = writePlot
	}
	if flags.Changed("keep-workdir") {
		cfg.Crest.KeepWorkDir = keepWorkDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(logLevel))
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(logFormat))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

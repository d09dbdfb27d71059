package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mkaelin/limmat-events/internal/config"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

var (
	flagConfig   string
	flagDataDir  string
	flagLogLevel string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limmat-events",
		Short: "Collect and publish event announcements from the Limmattal",
		Long: `A CLI tool that collects event announcements from municipal and club
websites around the Limmattal, normalizes them into a single catalog
and publishes the catalog as listings, calendar feeds and announcements.`,
		SilenceUsage: true,
	}

	// Persistent flags shared by all subcommands
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the config file (default: ./config.yaml when present)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for the event store (overrides config)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

// loadConfig resolves the effective configuration from file, environment
// and command-line flags, then applies the log level globally.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadDefaultFile()
	}
	if err != nil {
		return cfg, err
	}

	// Flag overrides
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return cfg, fmt.Errorf("parsing log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	return cfg, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

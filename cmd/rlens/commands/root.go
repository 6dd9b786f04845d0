// Package commands implements the rlens CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JoshuaHockley/rlens/internal/logger"
	"github.com/JoshuaHockley/rlens/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "rlens",
	Short: "rlens - image viewing pipeline",
	Long: `rlens loads and caches images for fast browsing: full-resolution
images are preloaded around the current position, thumbnails are
generated on demand and reused from an on-disk cache across runs.

Use "rlens [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/rlens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(thumbsCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the config file and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.Init(logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

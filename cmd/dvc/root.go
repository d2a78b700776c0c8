package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/gitrepo"
	"github.com/databill86/dvc/internal/logging"
	"github.com/databill86/dvc/internal/version"
)

var (
	// verboseFlag raises the log level to debug
	verboseFlag bool
	// logFormatFlag overrides the configured log format (human, json)
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "dvc",
	Short: "DVC - Data Version Control",
	Long: `DVC (Data Version Control) tracks how data files are produced and
reproduces the stale parts of a data pipeline by walking the dependency
graph of each target and re-executing only the commands whose inputs,
code or outputs changed.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("DVC version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log output format: human or json (default from config)")
}

// mustRepoRoot locates the enclosing git repository or exits.
func mustRepoRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}

	root, err := gitrepo.RepoRoot(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// mustLoadConfig loads and validates the repository config or exits.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the command logger from config and CLI flags.
// Precedence: CLI flags > config.
func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.Logging.Level)
	if verboseFlag {
		level = logging.DebugLevel
	}

	format := logging.Format(cfg.Logging.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}
	if format != logging.JSONFormat {
		format = logging.HumanFormat
	}

	return logging.NewLogger(logging.Config{Format: format, Level: level})
}

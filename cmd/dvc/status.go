package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databill86/dvc/internal/repro"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status TARGET...",
	Short: "Show which data files need reproduction",
	Long: `Check each target's dependency graph without running anything and
report whether the target would be regenerated by "dvc repro".

Examples:
  dvc status data/model.pkl
  dvc status data/*.csv --format=human`,
	Args: cobra.MinimumNArgs(1),
	Run:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

// StatusResponseCLI contains per-target staleness for CLI output
type StatusResponseCLI struct {
	Targets []TargetStatusCLI `json:"targets"`
}

type TargetStatusCLI struct {
	Path  string `json:"path"`
	Stale bool   `json:"stale"`
	Error string `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) {
	root := mustRepoRoot()
	cfg := mustLoadConfig(root)
	logger := newLogger(cfg)

	env := buildEnv(root, cfg, logger)

	items, external, err := env.Resolver.ToDataItems(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(external) > 0 {
		for _, f := range external {
			fmt.Fprintf(os.Stderr, "Error: %s is not a managed data file\n", f)
		}
		os.Exit(1)
	}

	resp := &StatusResponseCLI{Targets: make([]TargetStatusCLI, 0, len(items))}
	failed := false
	for _, item := range items {
		target := TargetStatusCLI{Path: item.Data}

		node, err := repro.NewNode(env, item)
		if err == nil {
			var stale bool
			stale, err = node.Stale(nil)
			target.Stale = stale
		}
		if err != nil {
			target.Error = err.Error()
			failed = true
		}

		resp.Targets = append(resp.Targets, target)
	}

	output, err := FormatResponse(resp, OutputFormat(statusFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	if failed {
		os.Exit(1)
	}
}

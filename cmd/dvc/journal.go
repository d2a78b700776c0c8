package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/journal"
)

var (
	journalFormat string
	journalLimit  int
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the reproduction run history",
	Long: `List recent reproduction runs recorded in the run journal.

Examples:
  dvc journal
  dvc journal -n 50 --format=json`,
	Args: cobra.NoArgs,
	Run:  runJournal,
}

func init() {
	journalCmd.Flags().StringVar(&journalFormat, "format", "human", "Output format (json, human)")
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Maximum runs to show")
	rootCmd.AddCommand(journalCmd)
}

// JournalResponseCLI contains run history for CLI output
type JournalResponseCLI struct {
	Runs []RunCLI `json:"runs"`
}

type RunCLI struct {
	ID         string   `json:"id"`
	Project    string   `json:"project,omitempty"`
	Targets    []string `json:"targets"`
	Status     string   `json:"status"`
	Changed    int      `json:"changed"`
	ErrorCode  string   `json:"errorCode,omitempty"`
	StartedAt  string   `json:"startedAt"`
	FinishedAt string   `json:"finishedAt,omitempty"`
}

func runJournal(cmd *cobra.Command, args []string) {
	root := mustRepoRoot()
	cfg := mustLoadConfig(root)
	logger := newLogger(cfg)

	j, err := journal.Open(filepath.Join(root, config.DvcDirName), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	runs, err := j.Recent(journalLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}

	resp := &JournalResponseCLI{Runs: make([]RunCLI, 0, len(runs))}
	for _, run := range runs {
		r := RunCLI{
			ID:        run.ID,
			Project:   run.Project,
			Targets:   run.Targets,
			Status:    run.Status,
			Changed:   run.Changed,
			ErrorCode: run.ErrorCode,
			StartedAt: run.StartedAt.Format(time.RFC3339),
		}
		if !run.FinishedAt.IsZero() {
			r.FinishedAt = run.FinishedAt.Format(time.RFC3339)
		}
		resp.Runs = append(resp.Runs, r)
	}

	output, err := FormatResponse(resp, OutputFormat(journalFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/databill86/dvc/internal/artifactcache"
	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/dataitem"
	"github.com/databill86/dvc/internal/executor"
	"github.com/databill86/dvc/internal/gitrepo"
	"github.com/databill86/dvc/internal/journal"
	"github.com/databill86/dvc/internal/logging"
	"github.com/databill86/dvc/internal/repro"
	"github.com/databill86/dvc/internal/state"
)

var (
	reproForce          bool
	reproSkipGitActions bool
)

var reproCmd = &cobra.Command{
	Use:   "repro [TARGET...]",
	Short: "Reproduce stale data files",
	Long: `Reproduce the given data files. Each target's dependency graph is
walked depth-first; a target is re-executed when its own code changed,
when any dependency was regenerated, or when --force is given.

The repository must be clean before reproduction and the results are
committed afterwards, unless --skip-git-actions is set.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := mustRepoRoot()
		cfg := mustLoadConfig(root)
		logger := newLogger(cfg)

		driver, cleanup := buildDriver(root, cfg, logger)
		code := driver.Run(args, reproOptions(cfg))
		cleanup()
		os.Exit(code)
	},
}

func init() {
	reproCmd.Flags().BoolVarP(&reproForce, "force", "f", false,
		"Reproduce even if no changes were detected")
	reproCmd.Flags().BoolVar(&reproSkipGitActions, "skip-git-actions", false,
		"Skip the clean-tree pre-check and the final commit")
	rootCmd.AddCommand(reproCmd)
}

// reproOptions derives the run options from flags and config. Disabling
// git in the config (git.enabled: false) skips git actions on every
// run, as if --skip-git-actions were always given.
func reproOptions(cfg *config.Config) repro.Options {
	return repro.Options{
		Force:          reproForce,
		SkipGitActions: reproSkipGitActions || !cfg.Git.Enabled,
	}
}

// buildEnv assembles the reproduction collaborators for a repository.
func buildEnv(root string, cfg *config.Config, logger *logging.Logger) repro.Env {
	factory := dataitem.NewPathFactory(root, cfg)

	env := repro.Env{
		Git:      gitrepo.New(root, logger),
		Resolver: factory,
		States:   repro.StateLoaderFunc(state.Load),
		Runner:   executor.New(root, factory, logger),
		Logger:   logger,
	}
	if cfg.CacheDir != "" {
		env.Cache = artifactcache.New(filepath.Join(root, cfg.CacheDir), logger)
	}
	return env
}

// buildDriver wires the full repro driver, including the optional
// project metadata and run journal. The returned cleanup closes the
// journal and must be called even when the driver is not run.
func buildDriver(root string, cfg *config.Config, logger *logging.Logger) (*repro.Driver, func()) {
	env := buildEnv(root, cfg, logger)
	dvcDir := filepath.Join(root, config.DvcDirName)
	timeout := time.Duration(cfg.Git.LockTimeoutSeconds) * time.Second

	driver := repro.NewDriver(env, dvcDir, timeout)

	project, err := config.LoadProject(root)
	if err != nil {
		logger.Warn("project file is unusable, commit messages will be unprefixed",
			map[string]interface{}{"error": err.Error()})
	} else {
		driver.Project = project
	}

	cleanup := func() {}
	if cfg.Journal.Enabled {
		j, err := journal.Open(dvcDir, logger)
		if err != nil {
			logger.Warn("journal is unavailable, run history will not be recorded",
				map[string]interface{}{"error": err.Error()})
		} else {
			driver.Journal = j
			cleanup = func() {
				if err := j.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "warning: closing journal: %v\n", err)
				}
			}
		}
	}
	return driver, cleanup
}

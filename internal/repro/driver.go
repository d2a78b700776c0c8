package repro

import (
	"strings"
	"time"

	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/dvcerrors"
	"github.com/databill86/dvc/internal/journal"
	"github.com/databill86/dvc/internal/lock"
)

// RunRecorder receives the lifecycle of a reproduction run. Recording
// is best effort: a failing recorder never fails the run.
type RunRecorder interface {
	StartRun(project string, targets []string) (string, error)
	FinishRun(id string, status string, changed int, errorCode string) error
}

// Options control one call to Driver.Run.
type Options struct {
	// Force regenerates every reproducible artifact regardless of
	// detected changes.
	Force bool

	// SkipGitActions skips the repository readiness pre-check and the
	// final commit.
	SkipGitActions bool
}

// Driver is the reproduction entry point: it serializes runs through
// the repository lock, resolves targets, reproduces them in order and
// commits the results.
type Driver struct {
	env     Env
	dvcDir  string
	timeout time.Duration

	// Project optionally names the pipeline in commit messages and
	// journal entries.
	Project *config.Project

	// Journal optionally records run history.
	Journal RunRecorder
}

// NewDriver creates a Driver. dvcDir is the repository's .dvc
// directory (lock location); lockTimeout bounds the wait for it.
func NewDriver(env Env, dvcDir string, lockTimeout time.Duration) *Driver {
	return &Driver{env: env, dvcDir: dvcDir, timeout: lockTimeout}
}

// Run reproduces the given targets and returns the process exit code:
// 0 when at least one artifact was regenerated and the results were
// handled cleanly, 1 otherwise. A run that finds everything up to date
// also exits 1, with a distinct message, matching the historical
// behavior of the tool.
func (d *Driver) Run(targets []string, opts Options) int {
	logger := d.env.logger()

	lk, err := lock.Acquire(d.dvcDir, d.timeout)
	if err != nil {
		if _, busy := err.(*lock.ErrBusy); busy {
			logger.Error("cannot run: another DVC command is active and holds the lock, retry later", map[string]interface{}{
				"code": string(dvcerrors.LockBusy),
			})
		} else {
			logger.Error("cannot acquire repository lock", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return 1
	}
	defer lk.Release()

	if !opts.SkipGitActions {
		ready, err := d.env.Git.IsReady()
		if err != nil {
			logger.Error("repository readiness check failed", map[string]interface{}{
				"error": err.Error(),
			})
			return 1
		}
		if !ready {
			logger.Error("repository is not ready: commit or stash pending changes first", map[string]interface{}{
				"code": string(dvcerrors.RepositoryNotReady),
			})
			return 1
		}
	}

	items, external, err := d.env.Resolver.ToDataItems(targets)
	if err != nil {
		logger.Error("cannot resolve targets", map[string]interface{}{
			"error": err.Error(),
		})
		return 1
	}
	if len(external) > 0 {
		logger.Error("files outside of the data directory cannot be reproduced", map[string]interface{}{
			"code":  string(dvcerrors.TargetNotManaged),
			"files": strings.Join(external, " "),
		})
		return 1
	}

	runID := d.recordStart(targets)

	changed := 0
	code := NewCodeDepSet()
	var runErr error

	for _, item := range items {
		node, err := NewNode(d.env, item)
		if err == nil {
			var ch bool
			ch, err = node.Reproduce(opts.Force, code, nil)
			if err == nil {
				if ch {
					changed++
					logger.Info("data file was reproduced", map[string]interface{}{
						"target": item.Data,
					})
				} else {
					logger.Info("reproduction is not required for data file", map[string]interface{}{
						"target": item.Data,
					})
				}
				continue
			}
		}

		logger.Error("error reproducing data file", map[string]interface{}{
			"target": item.Data,
			"error":  err.Error(),
		})
		runErr = err
		break
	}

	if code.Len() > 0 {
		logger.Debug("code dependencies touched by this run", map[string]interface{}{
			"files": strings.Join(code.Paths(), " "),
		})
	}

	if runErr != nil {
		logger.Error("errors occurred: one or more reproductions were not successful", nil)
		if changed > 0 && !opts.SkipGitActions {
			logger.Warn("the working tree may contain uncommitted changes from targets reproduced before the failure", nil)
		}
		d.recordFinish(runID, journal.StatusFailed, changed, string(dvcerrors.CodeOf(runErr)))
		return 1
	}

	if changed == 0 {
		logger.Info("nothing to reproduce: all data files are up to date", nil)
		d.recordFinish(runID, journal.StatusUpToDate, 0, "")
		return 1
	}

	if !opts.SkipGitActions {
		message := d.Project.CommitPrefix() + "DVC repro: " + strings.Join(targets, " ")
		if err := d.env.Git.Commit(message); err != nil {
			logger.Error("could not commit reproduced changes", map[string]interface{}{
				"error": err.Error(),
			})
			logger.Warn("the working tree contains uncommitted reproduced changes", nil)
			d.recordFinish(runID, journal.StatusFailed, changed, string(dvcerrors.CommitFailed))
			return 1
		}
	}

	d.recordFinish(runID, journal.StatusChanged, changed, "")
	return 0
}

func (d *Driver) recordStart(targets []string) string {
	if d.Journal == nil {
		return ""
	}
	project := ""
	if d.Project != nil {
		project = d.Project.Name
	}
	id, err := d.Journal.StartRun(project, targets)
	if err != nil {
		d.env.logger().Warn("could not record run in journal", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return id
}

func (d *Driver) recordFinish(runID, status string, changed int, errorCode string) {
	if d.Journal == nil || runID == "" {
		return
	}
	if err := d.Journal.FinishRun(runID, status, changed, errorCode); err != nil {
		d.env.logger().Warn("could not record run outcome in journal", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Package gitrepo wraps the git commands DVC needs: repository
// readiness, change detection for staleness decisions, and committing
// reproduced results.
package gitrepo

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/databill86/dvc/internal/logging"
)

// Repo is the version-control collaborator for one repository.
type Repo struct {
	root   string
	logger *logging.Logger
}

// New creates a Repo rooted at root.
func New(root string, logger *logging.Logger) *Repo {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Repo{root: root, logger: logger}
}

// Root returns the repository root.
func (r *Repo) Root() string {
	return r.root
}

// IsGitRepository checks if the given path is inside a git repository.
func IsGitRepository(root string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = root
	return cmd.Run() == nil
}

// RepoRoot finds the git repository root from the given directory.
func RepoRoot(startPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = startPath

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (run git init first): %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// IsReady reports whether the repository is in a state a reproduction
// run may start from: a git repository with no uncommitted changes.
func (r *Repo) IsReady() (bool, error) {
	if !IsGitRepository(r.root) {
		r.logger.Error("not a git repository", map[string]interface{}{"root": r.root})
		return false, nil
	}

	status, err := r.git("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("checking repository status: %w", err)
	}
	if status != "" {
		r.logger.Error("repository has uncommitted changes, commit or stash them first", map[string]interface{}{
			"root": r.root,
		})
		return false, nil
	}

	return true, nil
}

// FilesChanged reports whether the artifact or any of its code
// dependencies changed since the artifact was last produced. "Last
// produced" is the last commit touching the artifact, since every
// successful reproduction run ends in a commit.
func (r *Repo) FilesChanged(artifactPath string, codeDeps []string) (bool, error) {
	watched := append([]string{artifactPath}, codeDeps...)

	// Uncommitted modifications or untracked files among the watched
	// paths always count as changed.
	args := append([]string{"status", "--porcelain", "--"}, watched...)
	status, err := r.git(args...)
	if err != nil {
		return false, fmt.Errorf("checking worktree state of %q: %w", artifactPath, err)
	}
	if status != "" {
		r.logger.Debug("watched files dirty in worktree", map[string]interface{}{
			"artifact": artifactPath,
		})
		return true, nil
	}

	lastProduced, err := r.git("log", "-1", "--format=%H", "--", artifactPath)
	if err != nil {
		return false, fmt.Errorf("finding last commit of %q: %w", artifactPath, err)
	}
	if lastProduced == "" {
		// Never committed: no recorded production to compare against.
		return true, nil
	}

	args = append([]string{"diff", "--name-only", lastProduced, "HEAD", "--"}, watched...)
	diff, err := r.git(args...)
	if err != nil {
		return false, fmt.Errorf("diffing %q since %s: %w", artifactPath, lastProduced[:7], err)
	}
	if diff != "" {
		r.logger.Debug("watched files changed since last production", map[string]interface{}{
			"artifact": artifactPath,
			"since":    lastProduced[:7],
			"files":    diff,
		})
		return true, nil
	}

	return false, nil
}

// Commit stages all changes and commits them with the given message.
// A clean tree is a no-op: a regeneration that produced identical bytes
// leaves nothing to record.
func (r *Repo) Commit(message string) error {
	if _, err := r.git("add", "--all"); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}

	status, err := r.git("status", "--porcelain")
	if err != nil {
		return fmt.Errorf("checking staged changes: %w", err)
	}
	if status == "" {
		r.logger.Debug("nothing to commit, regenerated files are identical", nil)
		return nil
	}

	if _, err := r.git("commit", "-m", message); err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}

	r.logger.Info("committed reproduced changes", map[string]interface{}{
		"message": message,
	})
	return nil
}

// git runs one git command in the repo root and returns trimmed stdout.
func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.root

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return strings.TrimSpace(string(output)), nil
}

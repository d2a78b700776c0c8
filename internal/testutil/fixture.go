// Package testutil provides git repository fixtures for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// InitGitRepo creates a temp directory, initializes a git repository in
// it with a deterministic identity, and makes an initial empty commit.
func InitGitRepo(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	Git(t, root, "init", "-q")
	Git(t, root, "config", "user.email", "test@example.com")
	Git(t, root, "config", "user.name", "Test")
	Git(t, root, "commit", "-q", "--allow-empty", "-m", "initial")
	return root
}

// Git runs a git command in root, failing the test on error, and
// returns trimmed stdout.
func Git(t *testing.T, root string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes content to a repo-relative path, creating parents.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// CommitAll stages and commits everything in the repository.
func CommitAll(t *testing.T, root, message string) {
	t.Helper()

	Git(t, root, "add", "--all")
	Git(t, root, "commit", "-q", "--allow-empty", "-m", message)
}

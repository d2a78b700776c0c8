package gitrepo

import (
	"testing"

	"github.com/databill86/dvc/internal/logging"
	"github.com/databill86/dvc/internal/testutil"
)

func newRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	root := testutil.InitGitRepo(t)
	return New(root, logging.NewDiscardLogger()), root
}

func TestIsReady(t *testing.T) {
	r, root := newRepo(t)

	ready, err := r.IsReady()
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if !ready {
		t.Error("clean repository should be ready")
	}

	testutil.WriteFile(t, root, "data/out.csv", "1\n")
	ready, err = r.IsReady()
	if err != nil {
		t.Fatalf("IsReady with dirty tree: %v", err)
	}
	if ready {
		t.Error("repository with untracked files should not be ready")
	}
}

func TestIsReadyOutsideGit(t *testing.T) {
	r := New(t.TempDir(), logging.NewDiscardLogger())
	ready, err := r.IsReady()
	if err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if ready {
		t.Error("plain directory should not be ready")
	}
}

func TestFilesChangedCleanHistory(t *testing.T) {
	r, root := newRepo(t)

	testutil.WriteFile(t, root, "data/out.csv", "1\n")
	testutil.WriteFile(t, root, "code/train.py", "print('v1')\n")
	testutil.CommitAll(t, root, "produce out.csv")

	changed, err := r.FilesChanged("data/out.csv", []string{"code/train.py"})
	if err != nil {
		t.Fatalf("FilesChanged: %v", err)
	}
	if changed {
		t.Error("nothing changed since production, expected false")
	}
}

func TestFilesChangedDirtyCodeDep(t *testing.T) {
	r, root := newRepo(t)

	testutil.WriteFile(t, root, "data/out.csv", "1\n")
	testutil.WriteFile(t, root, "code/train.py", "print('v1')\n")
	testutil.CommitAll(t, root, "produce out.csv")

	// Modify the code dependency without committing.
	testutil.WriteFile(t, root, "code/train.py", "print('v2')\n")

	changed, err := r.FilesChanged("data/out.csv", []string{"code/train.py"})
	if err != nil {
		t.Fatalf("FilesChanged: %v", err)
	}
	if !changed {
		t.Error("dirty code dependency should count as changed")
	}
}

func TestFilesChangedCommittedAfterProduction(t *testing.T) {
	r, root := newRepo(t)

	testutil.WriteFile(t, root, "data/out.csv", "1\n")
	testutil.WriteFile(t, root, "code/train.py", "print('v1')\n")
	testutil.CommitAll(t, root, "produce out.csv")

	// The code dep changes in a later commit that does not touch the
	// artifact itself.
	testutil.WriteFile(t, root, "code/train.py", "print('v2')\n")
	testutil.CommitAll(t, root, "tweak training script")

	changed, err := r.FilesChanged("data/out.csv", []string{"code/train.py"})
	if err != nil {
		t.Fatalf("FilesChanged: %v", err)
	}
	if !changed {
		t.Error("code dep committed after production should count as changed")
	}
}

func TestFilesChangedUncommittedArtifact(t *testing.T) {
	r, root := newRepo(t)

	// Artifact exists but was never committed.
	testutil.WriteFile(t, root, "data/out.csv", "1\n")

	changed, err := r.FilesChanged("data/out.csv", nil)
	if err != nil {
		t.Fatalf("FilesChanged: %v", err)
	}
	if !changed {
		t.Error("artifact without commit history should count as changed")
	}
}

func TestCommit(t *testing.T) {
	r, root := newRepo(t)

	testutil.WriteFile(t, root, "data/out.csv", "1\n")
	if err := r.Commit("DVC repro: data/out.csv"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := testutil.Git(t, root, "log", "-1", "--format=%s")
	if got != "DVC repro: data/out.csv" {
		t.Errorf("commit subject = %q", got)
	}

	status := testutil.Git(t, root, "status", "--porcelain")
	if status != "" {
		t.Errorf("tree should be clean after commit, status: %q", status)
	}
}

func TestCommitCleanTree(t *testing.T) {
	r, root := newRepo(t)

	// Nothing changed since the last commit. Regeneration can produce
	// byte-identical artifacts, so this must be a silent no-op.
	if err := r.Commit("DVC repro: data/out.csv"); err != nil {
		t.Fatalf("Commit on a clean tree: %v", err)
	}

	got := testutil.Git(t, root, "log", "-1", "--format=%s")
	if got == "DVC repro: data/out.csv" {
		t.Error("no commit should be created for a clean tree")
	}
}

func TestRepoRoot(t *testing.T) {
	_, root := newRepo(t)

	got, err := RepoRoot(root)
	if err != nil {
		t.Fatalf("RepoRoot: %v", err)
	}
	// Compare via git itself to dodge symlinked temp dirs.
	want := testutil.Git(t, root, "rev-parse", "--show-toplevel")
	if got != want {
		t.Errorf("RepoRoot = %q, expected %q", got, want)
	}

	if _, err := RepoRoot(t.TempDir()); err == nil {
		t.Error("expected error outside a git repository")
	}
}

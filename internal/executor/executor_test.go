package executor

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/dataitem"
	"github.com/databill86/dvc/internal/logging"
)

func newExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to sh")
	}

	root := t.TempDir()
	factory := dataitem.NewPathFactory(root, config.DefaultConfig())
	e := New(root, factory, logging.NewDiscardLogger())
	e.Stdout = &bytes.Buffer{}
	e.Stderr = &bytes.Buffer{}
	return e, root
}

func TestExecuteRunsInRepoRoot(t *testing.T) {
	e, root := newExecutor(t)

	if err := e.Execute([]string{"sh", "-c", "echo hello > produced.txt"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "produced.txt")); err != nil {
		t.Errorf("command did not run in the repo root: %v", err)
	}
}

func TestExecuteFailure(t *testing.T) {
	e, _ := newExecutor(t)

	if err := e.Execute([]string{"sh", "-c", "exit 3"}); err == nil {
		t.Error("non-zero exit should be an error")
	}
	if err := e.Execute([]string{"definitely-not-a-binary-xyz"}); err == nil {
		t.Error("unstartable command should be an error")
	}
	if err := e.Execute(nil); err == nil {
		t.Error("empty argv should be an error")
	}
}

func TestDataItemsFromArgv(t *testing.T) {
	e, _ := newExecutor(t)

	items := e.DataItemsFromArgv([]string{
		"python", "code/train.py", "--epochs", "data/raw/users.csv", "data/model.bin",
	})

	if len(items) != 2 {
		t.Fatalf("items = %v, expected the two data paths", items)
	}
	if items[0].Data != "data/raw/users.csv" || items[1].Data != "data/model.bin" {
		t.Errorf("items = %v", items)
	}

	if got := e.DataItemsFromArgv([]string{"make"}); got != nil {
		t.Errorf("single-token argv should yield nothing, got %v", got)
	}
}

// Package executor runs the producing commands recorded in state files.
package executor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/databill86/dvc/internal/dataitem"
	"github.com/databill86/dvc/internal/logging"
)

// Executor runs producing commands inside the repository root. It
// imposes no timeout of its own; a reproduction step runs as long as
// the command does.
type Executor struct {
	repoRoot string
	factory  *dataitem.PathFactory
	logger   *logging.Logger

	// Stdout and Stderr receive command output; default to the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// New creates an Executor for one repository.
func New(repoRoot string, factory *dataitem.PathFactory, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Executor{
		repoRoot: repoRoot,
		factory:  factory,
		logger:   logger,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Execute runs argv in the repository root and returns an error when
// the command cannot start or exits non-zero.
func (e *Executor) Execute(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	e.logger.Debug("executing command", map[string]interface{}{
		"cmd": strings.Join(argv, " "),
	})
	start := time.Now()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = e.repoRoot
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w", strings.Join(argv, " "), err)
	}

	e.logger.Debug("command finished", map[string]interface{}{
		"cmd":        argv[0],
		"durationMs": time.Since(start).Milliseconds(),
	})
	return nil
}

// DataItemsFromArgv derives the managed data items an argv references:
// every non-flag token past the executable that resolves inside the
// data directory. Used to know which artifacts a command touches.
func (e *Executor) DataItemsFromArgv(argv []string) []dataitem.DataItem {
	if len(argv) < 2 {
		return nil
	}

	var items []dataitem.DataItem
	for _, token := range argv[1:] {
		if strings.HasPrefix(token, "-") {
			continue
		}
		item, err := e.factory.DataItem(token)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

//go:build windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// LockFileName is the lock file inside the .dvc directory.
const LockFileName = "repro.lock"

const pollInterval = 100 * time.Millisecond

// Lock is the process-wide mutual exclusion guarding a repository's
// working tree during reproduction. On Windows exclusivity comes from
// O_EXCL creation of the lock file rather than flock.
type Lock struct {
	path  string
	file  *os.File
	owner string
}

// ErrBusy is returned when the lock stays held past the timeout.
type ErrBusy struct {
	Path   string
	Holder string
}

func (e *ErrBusy) Error() string {
	if e.Holder != "" {
		return fmt.Sprintf("lock %q is held by another process (%s)", e.Path, e.Holder)
	}
	return fmt.Sprintf("lock %q is held by another process", e.Path)
}

// Acquire takes the repository lock, retrying exclusive creation until
// the timeout elapses. Returns *ErrBusy when another run holds it.
func Acquire(dvcDir string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(dvcDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s directory: %w", dvcDir, err)
	}

	path := filepath.Join(dvcDir, LockFileName)
	deadline := time.Now().Add(timeout)

	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			owner := uuid.New().String()
			if _, werr := file.WriteString("pid " + strconv.Itoa(os.Getpid()) + " run " + owner); werr != nil {
				_ = file.Close()
				_ = os.Remove(path)
				return nil, fmt.Errorf("writing holder to lock file: %w", werr)
			}
			return &Lock{path: path, file: file, owner: owner}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("opening lock file: %w", err)
		}
		if time.Now().After(deadline) {
			holder := ""
			if content, readErr := os.ReadFile(path); readErr == nil {
				holder = string(content)
			}
			return nil, &ErrBusy{Path: path, Holder: holder}
		}
		time.Sleep(pollInterval)
	}
}

// Owner returns the unique token of this acquisition.
func (l *Lock) Owner() string {
	return l.owner
}

// Release releases the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}

	_ = l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
}

//go:build !windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// LockFileName is the lock file inside the .dvc directory.
const LockFileName = "repro.lock"

// pollInterval is how often Acquire retries a busy lock.
const pollInterval = 100 * time.Millisecond

// Lock is the process-wide mutual exclusion guarding a repository's
// working tree during reproduction. Held for the whole multi-target
// run, released unconditionally when the run completes.
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

// Acquire takes the repository lock, retrying non-blocking flock until
// the timeout elapses. Returns *ErrBusy when another run holds it.
func Acquire(dvcDir string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(dvcDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s directory: %w", dvcDir, err)
	}

	path := filepath.Join(dvcDir, LockFileName)
	deadline := time.Now().Add(timeout)

	for {
		lk, err := tryAcquire(path)
		if err == nil {
			return lk, nil
		}
		if _, busy := err.(*ErrBusy); !busy {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(pollInterval)
	}
}

func tryAcquire(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()

		holder := ""
		if content, readErr := os.ReadFile(path); readErr == nil && len(content) > 0 {
			holder = string(content)
		}
		return nil, &ErrBusy{Path: path, Holder: holder}
	}

	owner := uuid.New().String()
	if err := writeHolder(file, owner); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, err
	}

	return &Lock{path: path, file: file, owner: owner}, nil
}

func writeHolder(file *os.File, owner string) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("truncating lock file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("seeking lock file: %w", err)
	}
	if _, err := file.WriteString("pid " + strconv.Itoa(os.Getpid()) + " run " + owner); err != nil {
		return fmt.Errorf("writing holder to lock file: %w", err)
	}
	return nil
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

	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	l.file = nil

	// Best effort; a racing acquirer may have recreated it.
	_ = os.Remove(l.path)
}

package dvcerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *DvcError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(LockBusy, "repository is locked"),
			expected: "[LOCK_BUSY] repository is locked",
		},
		{
			name:     "with cause",
			err:      Wrap(ExecutionFailed, errors.New("exit status 1"), "command %q failed", "train.sh"),
			expected: `[EXECUTION_FAILED] command "train.sh" failed: exit status 1`,
		},
		{
			name:     "formatted message",
			err:      New(TargetNotManaged, "file %q is outside %q", "out.csv", "data"),
			expected: `[TARGET_NOT_MANAGED] file "out.csv" is outside "data"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.expected {
				t.Errorf("Error() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(InternalError, cause, "something broke")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if New(LockBusy, "busy").Unwrap() != nil {
		t.Error("Unwrap of cause-less error should be nil")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(MalformedState, "bad state")); got != MalformedState {
		t.Errorf("CodeOf = %q, expected %q", got, MalformedState)
	}

	// Code survives wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("target data/x.csv: %w", New(DependencyCycle, "cycle"))
	if got := CodeOf(wrapped); got != DependencyCycle {
		t.Errorf("CodeOf through fmt wrap = %q, expected %q", got, DependencyCycle)
	}

	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain error) = %q, expected %q", got, InternalError)
	}
}

func TestHasCode(t *testing.T) {
	err := New(RepositoryNotReady, "dirty working tree")
	if !HasCode(err, RepositoryNotReady) {
		t.Error("HasCode should match the error's own code")
	}
	if HasCode(err, LockBusy) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(nil, LockBusy) {
		t.Error("HasCode(nil) should be false")
	}
}

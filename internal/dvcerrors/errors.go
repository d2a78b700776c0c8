package dvcerrors

import (
	"errors"
	"fmt"
)

// Code represents stable error codes for all failure modes
type Code string

const (
	// LockBusy indicates the repository lock could not be acquired in time
	LockBusy Code = "LOCK_BUSY"
	// RepositoryNotReady indicates the git repository pre-check failed
	RepositoryNotReady Code = "REPOSITORY_NOT_READY"
	// TargetNotManaged indicates a requested target lies outside the data directory
	TargetNotManaged Code = "TARGET_NOT_MANAGED"
	// MalformedState indicates a state record lacks a usable producing command
	MalformedState Code = "MALFORMED_STATE"
	// DependencyNotManaged indicates a declared input lies outside the data directory
	DependencyNotManaged Code = "DEPENDENCY_NOT_MANAGED"
	// DependencyResolutionFailed indicates a declared input could not be resolved
	DependencyResolutionFailed Code = "DEPENDENCY_RESOLUTION_FAILED"
	// DependencyCycle indicates the declared inputs form a cycle
	DependencyCycle Code = "DEPENDENCY_CYCLE"
	// ExecutionFailed indicates a producing command exited with an error
	ExecutionFailed Code = "EXECUTION_FAILED"
	// CommitFailed indicates git could not commit the reproduced results
	CommitFailed Code = "COMMIT_FAILED"
	// InternalError indicates an unexpected error
	InternalError Code = "INTERNAL_ERROR"
)

// DvcError carries a stable code alongside a human-readable message.
type DvcError struct {
	Code    Code
	Message string
	cause   error
}

// New creates a DvcError without an underlying cause.
func New(code Code, format string, args ...interface{}) *DvcError {
	return &DvcError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a DvcError around an underlying cause.
func Wrap(code Code, cause error, format string, args ...interface{}) *DvcError {
	return &DvcError{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Error implements the error interface
func (e *DvcError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DvcError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the error code from err, unwrapping as needed.
// Returns InternalError for errors that carry no code.
func CodeOf(err error) Code {
	var de *DvcError
	if errors.As(err, &de) {
		return de.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

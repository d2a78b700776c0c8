// Package repro implements the reproduction engine: the recursive
// algorithm that walks an artifact's dependency graph, decides which
// ancestors are stale, and re-executes the producing commands needed to
// bring them up to date.
package repro

import (
	"github.com/databill86/dvc/internal/dataitem"
	"github.com/databill86/dvc/internal/logging"
	"github.com/databill86/dvc/internal/state"
)

// VersionControl is the git collaborator the engine consumes.
type VersionControl interface {
	IsReady() (bool, error)
	FilesChanged(artifactPath string, codeDeps []string) (bool, error)
	Commit(message string) error
}

// Resolver maps raw paths to managed data item identities.
type Resolver interface {
	DataItem(path string) (dataitem.DataItem, error)
	ToDataItems(paths []string) ([]dataitem.DataItem, []string, error)
}

// StateLoader loads a state record from its file path.
type StateLoader interface {
	Load(path string) (*state.Record, error)
}

// StateLoaderFunc adapts a plain function to StateLoader.
type StateLoaderFunc func(path string) (*state.Record, error)

// Load implements StateLoader.
func (f StateLoaderFunc) Load(path string) (*state.Record, error) {
	return f(path)
}

// CommandRunner executes a producing command.
type CommandRunner interface {
	Execute(argv []string) error
}

// Snapshotter stores a copy of an artifact before it is regenerated.
type Snapshotter interface {
	Snapshot(path string) (string, error)
}

// Env bundles the collaborators every reproduction node needs. It is
// threaded explicitly through node construction instead of living as
// ambient state on a long-lived command object.
type Env struct {
	Git      VersionControl
	Resolver Resolver
	States   StateLoader
	Runner   CommandRunner

	// Cache is optional; when set, artifacts are snapshotted before
	// regeneration overwrites them.
	Cache Snapshotter

	Logger *logging.Logger
}

func (e Env) logger() *logging.Logger {
	if e.Logger == nil {
		return logging.NewDiscardLogger()
	}
	return e.Logger
}

// CodeDepSet accumulates the code dependency paths touched across one
// whole recursive reproduction, in first-seen order. It is passed by
// reference through the recursion so callers can inspect afterwards
// which source files the run depended on.
type CodeDepSet struct {
	order []string
	seen  map[string]struct{}
}

// NewCodeDepSet creates an empty accumulator.
func NewCodeDepSet() *CodeDepSet {
	return &CodeDepSet{seen: make(map[string]struct{})}
}

// Add records paths not seen before, preserving order.
func (s *CodeDepSet) Add(paths ...string) {
	for _, p := range paths {
		if _, ok := s.seen[p]; ok {
			continue
		}
		s.seen[p] = struct{}{}
		s.order = append(s.order, p)
	}
}

// Paths returns the accumulated paths in first-seen order.
func (s *CodeDepSet) Paths() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of distinct paths accumulated.
func (s *CodeDepSet) Len() int {
	return len(s.order)
}

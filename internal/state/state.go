// Package state reads and writes the per-artifact state records that
// describe how a data file was produced and what it depends on.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Record is the persisted description of one artifact's production.
type Record struct {
	// Cmd is the argv that regenerates the artifact. A usable record
	// carries at least an executable and one argument.
	Cmd []string `yaml:"cmd"`

	// Deps are the input data files that invalidate the artifact when
	// they change. Order is preserved for deterministic traversal.
	Deps []string `yaml:"deps,omitempty"`

	// CodeDeps are source files checked alongside the artifact itself
	// for staleness.
	CodeDeps []string `yaml:"code-deps,omitempty"`

	// Reproducible is false for leaf/manual inputs that must never be
	// regenerated. Absent means true.
	Reproducible bool `yaml:"reproducible"`

	// CreatedAt records when the artifact was last produced.
	CreatedAt string `yaml:"created-at,omitempty"`

	// RunID ties the record to the journal entry of the producing run.
	RunID string `yaml:"run-id,omitempty"`
}

// HasUsableCmd reports whether the producing command can be re-executed:
// present, with an executable and at least one argument.
func (r *Record) HasUsableCmd() bool {
	return len(r.Cmd) >= 2
}

// Load reads a state record from its YAML file.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state file %q: %w", path, err)
	}

	// Reproducible defaults to true; yaml only overrides present keys.
	rec := &Record{Reproducible: true}
	if err := yaml.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parsing state file %q: %w", path, err)
	}

	return rec, nil
}

// Save writes a state record to path, creating parent directories.
func Save(path string, rec *Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating state directory for %q: %w", path, err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding state record for %q: %w", path, err)
	}

	return os.WriteFile(path, data, 0644)
}

// Package dataitem maps file-system paths onto the identities of managed
// data files. A path only becomes a DataItem when it lies inside the
// configured data directory; everything else is external to the system.
package dataitem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/databill86/dvc/internal/config"
	"github.com/databill86/dvc/internal/paths"
)

// StateSuffix is appended to the mirrored data path to form the state
// file path: data/raw/a.csv -> state/raw/a.csv.state
const StateSuffix = ".state"

// ErrNotInDataDir reports a path outside the managed data directory.
var ErrNotInDataDir = errors.New("path is outside the data directory")

// DataItem is the identity of one managed data file. Items are
// comparable by their repo-relative data path.
type DataItem struct {
	// Data is the repo-relative, slash-separated path of the data file
	Data string
	// State is the repo-relative path of the associated state record
	State string

	repoRoot string
}

// DataAbs returns the absolute path of the data file.
func (d DataItem) DataAbs() string {
	return paths.FromRepo(d.repoRoot, d.Data)
}

// StateAbs returns the absolute path of the state record.
func (d DataItem) StateAbs() string {
	return paths.FromRepo(d.repoRoot, d.State)
}

func (d DataItem) String() string {
	return d.Data
}

// PathFactory resolves raw paths into DataItems for one repository.
type PathFactory struct {
	repoRoot string
	dataDir  string
	stateDir string
}

// NewPathFactory creates a factory bound to a repo root and its config.
func NewPathFactory(repoRoot string, cfg *config.Config) *PathFactory {
	return &PathFactory{
		repoRoot: repoRoot,
		dataDir:  paths.Canonical(cfg.DataDir),
		stateDir: paths.Canonical(cfg.StateDir),
	}
}

// DataDir returns the canonical data directory.
func (f *PathFactory) DataDir() string {
	return f.dataDir
}

// DataItem resolves one path into a managed identity. Returns
// ErrNotInDataDir for paths outside the data directory and a generic
// error for anything else that prevents resolution.
func (f *PathFactory) DataItem(path string) (DataItem, error) {
	canonical, err := paths.Canonicalize(path, f.repoRoot)
	if err != nil {
		return DataItem{}, fmt.Errorf("resolving %q: %w", path, err)
	}

	if !paths.InsideRepo(canonical) || !paths.IsWithin(canonical, f.dataDir) {
		return DataItem{}, fmt.Errorf("%q: %w", path, ErrNotInDataDir)
	}
	if canonical == f.dataDir {
		return DataItem{}, fmt.Errorf("%q is the data directory itself, not a data file", path)
	}

	rel := strings.TrimPrefix(canonical, f.dataDir+"/")
	return DataItem{
		Data:     canonical,
		State:    f.stateDir + "/" + rel + StateSuffix,
		repoRoot: f.repoRoot,
	}, nil
}

// ToDataItems resolves a list of paths in one pass, partitioning them
// into managed items and the names of files outside the data directory.
// A non-NotInDataDir resolution failure aborts the whole call.
func (f *PathFactory) ToDataItems(pathList []string) ([]DataItem, []string, error) {
	items := make([]DataItem, 0, len(pathList))
	var external []string

	for _, p := range pathList {
		item, err := f.DataItem(p)
		if err != nil {
			if errors.Is(err, ErrNotInDataDir) {
				external = append(external, p)
				continue
			}
			return nil, nil, err
		}
		items = append(items, item)
	}

	return items, external, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ProjectDeclarationFile is the optional project declaration inside .dvc/
const ProjectDeclarationFile = "project.toml"

// Project represents an optional project declaration. Its name prefixes
// commit messages and tags journal entries so repositories hosting
// several pipelines stay tellable apart.
type Project struct {
	// Name is the short project identifier
	Name string `toml:"name"`

	// Description is a one-line description of the pipeline
	Description string `toml:"description,omitempty"`

	// Owner is the owner reference (e.g., @team-name or user@email.com)
	Owner string `toml:"owner,omitempty"`
}

// LoadProject parses .dvc/project.toml. A missing file is not an error;
// it yields a nil project.
func LoadProject(repoRoot string) (*Project, error) {
	path := filepath.Join(repoRoot, DvcDirName, ProjectDeclarationFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ProjectDeclarationFile, err)
	}

	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectDeclarationFile, err)
	}

	if p.Name == "" {
		return nil, fmt.Errorf("%s: project name must not be empty", ProjectDeclarationFile)
	}

	return &p, nil
}

// CommitPrefix returns the prefix used in commit messages for this
// project, or an empty string for a nil project.
func (p *Project) CommitPrefix() string {
	if p == nil || p.Name == "" {
		return ""
	}
	return "[" + p.Name + "] "
}

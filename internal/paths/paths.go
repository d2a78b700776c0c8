package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize converts a path (absolute, or relative to the repo
// root) into a repo-relative canonical path:
// - resolves symlinks to real paths
// - makes the path relative to the repo root
// - uses forward slashes regardless of platform
// Relative paths are anchored at the repo root, never at the process
// working directory: state files declare dependencies repo-relative,
// and the resolution must not depend on where the process was started.
func Canonicalize(path string, repoRoot string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(repoRoot, abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Files that do not exist yet (e.g. an artifact about to be
		// produced) keep their literal path.
		if os.IsNotExist(err) {
			resolved = abs
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = repoRoot
		} else {
			return "", err
		}
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// Canonical normalizes an already-relative path into canonical form:
// cleaned, slash-separated, no trailing slash.
func Canonical(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// IsWithin checks whether a canonical (slash-separated, relative) path
// lies inside the given canonical directory.
func IsWithin(canonical string, dir string) bool {
	if canonical == dir {
		return true
	}
	return strings.HasPrefix(canonical, dir+"/")
}

// InsideRepo reports whether a canonical path stays under the repo root.
func InsideRepo(canonical string) bool {
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// FromRepo joins a repo root with a canonical path using the platform
// separator.
func FromRepo(repoRoot string, canonical string) string {
	parts := strings.Split(canonical, "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "data")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "out.csv")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"existing file", file, "data/out.csv"},
		{"missing file", filepath.Join(sub, "new.csv"), "data/new.csv"},
		{"relative to repo root", "data/out.csv", "data/out.csv"},
		{"relative missing file", "data/new.csv", "data/new.csv"},
		{"outside root", filepath.Join(root, "..", "elsewhere.txt"), "../elsewhere.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Canonicalize(tc.path, root)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tc.path, err)
			}
			// Symlinked temp dirs (macOS) can add prefixes for paths that
			// escape the root, so only check the shape for those.
			if tc.expected == "../elsewhere.txt" {
				if InsideRepo(got) {
					t.Errorf("Canonicalize(%q) = %q, expected a path outside the repo", tc.path, got)
				}
				return
			}
			if got != tc.expected {
				t.Errorf("Canonicalize(%q) = %q, expected %q", tc.path, got, tc.expected)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
		dir       string
		expected  bool
	}{
		{"direct child", "data/out.csv", "data", true},
		{"nested child", "data/raw/out.csv", "data", true},
		{"the dir itself", "data", "data", true},
		{"sibling with prefix", "database/out.csv", "data", false},
		{"outside", "code/train.py", "data", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsWithin(tc.canonical, tc.dir); got != tc.expected {
				t.Errorf("IsWithin(%q, %q) = %v, expected %v", tc.canonical, tc.dir, got, tc.expected)
			}
		})
	}
}

func TestInsideRepo(t *testing.T) {
	if InsideRepo("../outside.txt") {
		t.Error("paths escaping the root should not be inside the repo")
	}
	if !InsideRepo("data/out.csv") {
		t.Error("relative paths under the root should be inside the repo")
	}
}

func TestFromRepo(t *testing.T) {
	got := FromRepo(filepath.Join("r", "epo"), "data/raw/a.csv")
	want := filepath.Join("r", "epo", "data", "raw", "a.csv")
	if got != want {
		t.Errorf("FromRepo = %q, expected %q", got, want)
	}
}

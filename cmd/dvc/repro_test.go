package main

import (
	"testing"

	"github.com/databill86/dvc/internal/config"
)

func TestReproOptions(t *testing.T) {
	tests := []struct {
		name       string
		gitEnabled bool
		force      bool
		skipFlag   bool
		wantSkip   bool
	}{
		{"defaults", true, false, false, false},
		{"skip flag set", true, false, true, true},
		{"git disabled in config", false, false, false, true},
		{"git disabled and flag set", false, false, true, true},
		{"force passes through", true, true, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func(force, skip bool) {
				reproForce, reproSkipGitActions = force, skip
			}(reproForce, reproSkipGitActions)
			reproForce = tc.force
			reproSkipGitActions = tc.skipFlag

			cfg := config.DefaultConfig()
			cfg.Git.Enabled = tc.gitEnabled

			opts := reproOptions(cfg)
			if opts.SkipGitActions != tc.wantSkip {
				t.Errorf("SkipGitActions = %v, expected %v", opts.SkipGitActions, tc.wantSkip)
			}
			if opts.Force != tc.force {
				t.Errorf("Force = %v, expected %v", opts.Force, tc.force)
			}
		})
	}
}

func TestReproAcceptsZeroTargets(t *testing.T) {
	// An empty target list is valid; the driver reports "nothing to
	// reproduce" instead of cobra rejecting the invocation.
	if err := reproCmd.Args(reproCmd, nil); err != nil {
		t.Errorf("zero targets should pass argument validation: %v", err)
	}
	if err := reproCmd.Args(reproCmd, []string{"data/a.csv"}); err != nil {
		t.Errorf("one target should pass argument validation: %v", err)
	}
}

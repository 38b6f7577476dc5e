package ruby

import (
	"context"
	"errors"

	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/shell"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReleaseChecker = (*ReleaseCheck)(nil)

// releaseDryRun is the Bundler gem-tasks release, run without pushing.
var releaseDryRun = []string{"exec", "rake", "release", "--dry-run"}

// ReleaseCheck implements driven.ReleaseChecker with `bundle exec rake
// release --dry-run`.
type ReleaseCheck struct {
	runner shell.Runner
}

// NewReleaseCheck creates a ReleaseCheck.
func NewReleaseCheck(runner shell.Runner) *ReleaseCheck {
	return &ReleaseCheck{runner: runner}
}

// Check runs the dry-run release in dir. On failure the returned output is
// everything the command printed.
func (c *ReleaseCheck) Check(ctx context.Context, dir string) (string, error) {
	out, err := c.runner.Run(ctx, dir, "bundle", releaseDryRun...)
	if err != nil {
		var exitErr *shell.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Output, err
		}
		return string(out), err
	}
	return string(out), nil
}

package driven

import "context"

// ReleaseChecker defines the driven port for the project's own release
// tooling. Check runs a dry-run release in dir and returns its combined
// output; a non-nil error means release automation is not usable.
type ReleaseChecker interface {
	Check(ctx context.Context, dir string) (output string, err error)
}

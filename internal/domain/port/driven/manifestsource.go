package driven

import (
	"context"
	"errors"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// ErrNoManifest is returned by ManifestSource.Packages when the directory
// contains no gemspec.
var ErrNoManifest = errors.New("no gemspecs found")

// ManifestSource defines the driven port for reading package manifests.
type ManifestSource interface {
	// Packages returns every package declared under dir, ordered by path.
	Packages(ctx context.Context, dir string) ([]model.Package, error)
}

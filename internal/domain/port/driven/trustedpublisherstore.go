package driven

import (
	"context"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// TrustedPublisherStore defines the driven port for the registry's trusted
// publisher resource of a gem.
type TrustedPublisherStore interface {
	// List returns the trusted publishers configured for gem.
	List(ctx context.Context, gem string) ([]model.ExistingPublisherRecord, error)

	// Create registers spec for gem. It succeeds only on a "created" response.
	Create(ctx context.Context, gem string, spec model.TrustedPublisherSpec) error
}

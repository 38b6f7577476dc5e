package driven

import (
	"context"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// EnvironmentHost defines the driven port for GitHub deployment environments.
type EnvironmentHost interface {
	// Precheck verifies the adapter can work at all (a required CLI is
	// installed, a token is accepted) before anything is read or written.
	Precheck(ctx context.Context) error

	// ListEnvironments returns the environments of repo.
	ListEnvironments(ctx context.Context, repo model.RepositoryIdentity) ([]model.Environment, error)

	// CreateEnvironment creates (or updates) the named environment on repo.
	CreateEnvironment(ctx context.Context, repo model.RepositoryIdentity, name string) (model.Environment, error)
}

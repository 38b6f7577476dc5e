package application

import (
	"context"
	"log/slog"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// EnvironmentService makes sure a GitHub deployment environment exists.
type EnvironmentService struct {
	host driven.EnvironmentHost
}

// NewEnvironmentService creates a new EnvironmentService.
func NewEnvironmentService(host driven.EnvironmentHost) *EnvironmentService {
	return &EnvironmentService{host: host}
}

// Ensure looks the named environment up on repo and creates it when missing.
// created reports whether this call created it. Any host failure aborts
// before or instead of the create, so nothing is left half-done.
func (s *EnvironmentService) Ensure(ctx context.Context, repo model.RepositoryIdentity, name string) (env model.Environment, created bool, err error) {
	if err := s.host.Precheck(ctx); err != nil {
		return model.Environment{}, false, err
	}

	envs, err := s.host.ListEnvironments(ctx, repo)
	if err != nil {
		return model.Environment{}, false, err
	}
	for _, e := range envs {
		if e.Name == name {
			slog.Debug("environment exists", "repository", repo.FullName(), "environment", name)
			return e, false, nil
		}
	}

	env, err = s.host.CreateEnvironment(ctx, repo, name)
	if err != nil {
		return model.Environment{}, false, err
	}
	slog.Info("environment created", "repository", repo.FullName(), "environment", name)
	return env, true, nil
}

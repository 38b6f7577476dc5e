package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	gh "github.com/google/go-github/v82/github"

	"github.com/rubygems/configure-trusted-publisher/internal/adapter/driven/shell"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EnvironmentHost = (*CLI)(nil)

// DefaultExecutable is the gh CLI binary looked up on PATH.
const DefaultExecutable = "gh"

// CLI implements the driven.EnvironmentHost port by shelling out to
// `gh api`, reusing whatever authentication the operator set up for gh.
type CLI struct {
	runner     shell.Runner
	executable string
}

// NewCLI creates a gh-backed EnvironmentHost.
func NewCLI(runner shell.Runner) *CLI {
	return &CLI{runner: runner, executable: DefaultExecutable}
}

// Precheck verifies gh is installed before any network action is attempted.
func (c *CLI) Precheck(_ context.Context) error {
	if _, err := c.runner.LookPath(c.executable); err != nil {
		return model.Preconditionf("The GitHub CLI (%s) is required to add a GitHub environment. "+
			"Please install it from https://cli.github.com/ and try again.", c.executable)
	}
	return nil
}

// ListEnvironments runs `gh api repos/{owner}/{repo}/environments`.
func (c *CLI) ListEnvironments(ctx context.Context, repo model.RepositoryIdentity) ([]model.Environment, error) {
	out, err := c.api(ctx, "list environments for "+repo.FullName(), environmentsPath(repo))
	if err != nil {
		return nil, err
	}

	var resp gh.EnvResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("decoding environments for %s: %w", repo.FullName(), err)
	}

	envs := make([]model.Environment, 0, len(resp.Environments))
	for _, e := range resp.Environments {
		envs = append(envs, mapEnvironment(e))
	}
	return envs, nil
}

// CreateEnvironment runs `gh api --method PUT repos/{owner}/{repo}/environments/{name}`.
func (c *CLI) CreateEnvironment(ctx context.Context, repo model.RepositoryIdentity, name string) (model.Environment, error) {
	action := fmt.Sprintf("create %s environment for %s", name, repo.FullName())
	out, err := c.api(ctx, action, "--method", "PUT", environmentsPath(repo)+"/"+url.PathEscape(name))
	if err != nil {
		return model.Environment{}, err
	}

	var env gh.Environment
	if err := json.Unmarshal(out, &env); err != nil {
		return model.Environment{}, fmt.Errorf("decoding %s environment for %s: %w", name, repo.FullName(), err)
	}
	return mapEnvironment(&env), nil
}

func (c *CLI) api(ctx context.Context, action string, args ...string) ([]byte, error) {
	out, err := c.runner.Run(ctx, "", c.executable, append([]string{"api"}, args...)...)
	if err != nil {
		var exitErr *shell.ExitError
		if errors.As(err, &exitErr) {
			return nil, &model.HostCLIError{Action: action, Command: exitErr.Command, Output: exitErr.Output}
		}
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return out, nil
}

func environmentsPath(repo model.RepositoryIdentity) string {
	return "repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) + "/environments"
}

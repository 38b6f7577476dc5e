// Package application orchestrates the domain through the driven ports.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Registry identifies the gem registry the publisher is configured on.
type Registry struct {
	// URL is the registry root, e.g. "https://rubygems.org".
	URL string
	// Host is the display host. It also names the GitHub environment.
	Host string
}

// GemURL returns the public page of gem.
func (r Registry) GemURL(gem string) string {
	u, err := url.JoinPath(r.URL, "gems", gem)
	if err != nil {
		return strings.TrimSuffix(r.URL, "/") + "/gems/" + gem
	}
	return u
}

// ConfigurationURL returns the page listing the trusted publishers of gem.
func (r Registry) ConfigurationURL(gem string) string {
	return r.GemURL(gem) + "/trusted_publishers"
}

// ConfigureRequest is the input of a configuration run.
type ConfigureRequest struct {
	// RepositoryDir is the local checkout; relative paths are resolved.
	RepositoryDir string
	// GemName overrides the name found in the gemspec.
	GemName string
}

// ConfigureResult describes a successful run.
type ConfigureResult struct {
	Gem              string
	Repository       model.RepositoryIdentity
	Environment      *model.Environment
	WorkflowPath     string
	WorkflowWritten  bool
	ConfigurationURL string
}

// ConfigureService runs the end-to-end configuration of a trusted publisher:
// resolve the gem and its repository, optionally provision a GitHub
// environment, write the release workflow, then register the publisher.
//
// Local and GitHub steps run before anything is written to the registry, so
// a failure there leaves the registry untouched. Nothing is rolled back; a
// re-run converges because every step is idempotent or asks first.
type ConfigureService struct {
	manifests    driven.ManifestSource
	release      driven.ReleaseChecker
	environments *EnvironmentService
	workflows    *WorkflowSynthesizer
	auth         driven.RegistryAuthClient
	publishers   *TrustedPublisherService
	prompter     driven.Prompter
	registry     Registry
}

// NewConfigureService creates a ConfigureService.
func NewConfigureService(
	manifests driven.ManifestSource,
	release driven.ReleaseChecker,
	environments *EnvironmentService,
	workflows *WorkflowSynthesizer,
	auth driven.RegistryAuthClient,
	publishers *TrustedPublisherService,
	prompter driven.Prompter,
	registry Registry,
) *ConfigureService {
	return &ConfigureService{
		manifests:    manifests,
		release:      release,
		environments: environments,
		workflows:    workflows,
		auth:         auth,
		publishers:   publishers,
		prompter:     prompter,
		registry:     registry,
	}
}

// Configure runs the flow for req. A *model.ConflictError means an equivalent
// publisher already exists and nothing was created on the registry.
func (s *ConfigureService) Configure(ctx context.Context, req ConfigureRequest) (ConfigureResult, error) {
	dir, err := filepath.Abs(req.RepositoryDir)
	if err != nil {
		return ConfigureResult{}, fmt.Errorf("resolving %s: %w", req.RepositoryDir, err)
	}

	pkgs, err := loadPackages(ctx, s.manifests, dir)
	if err != nil {
		return ConfigureResult{}, err
	}
	pkg, err := SelectPackage(pkgs, req.GemName, dir)
	if err != nil {
		return ConfigureResult{}, err
	}

	if err := s.checkRelease(ctx, pkg.Name, dir); err != nil {
		return ConfigureResult{}, err
	}

	repo, err := ResolveRepository(pkg)
	if err != nil {
		return ConfigureResult{}, err
	}
	slog.Info("configuring trusted publisher", "gem", pkg.Name, "dir", dir, "repository", repo.FullName())
	s.prompter.Say(fmt.Sprintf("Configuring trusted publisher for %s in %s for %s", pkg.Name, dir, repo.FullName()))

	result := ConfigureResult{
		Gem:              pkg.Name,
		Repository:       repo,
		ConfigurationURL: s.registry.ConfigurationURL(pkg.Name),
	}

	env, err := s.provisionEnvironment(ctx, repo)
	if err != nil {
		return ConfigureResult{}, err
	}
	result.Environment = env

	trigger, err := s.askTrigger(pkg.Name)
	if err != nil {
		return ConfigureResult{}, err
	}

	wf := model.WorkflowSpec{Trigger: trigger, Repository: repo}
	envName := ""
	if env != nil {
		envName = env.Name
		wf.Environment = &model.EnvironmentBinding{Name: env.Name, URL: s.registry.GemURL(pkg.Name)}
	}

	result.WorkflowPath = filepath.Join(dir, filepath.FromSlash(model.WorkflowPath))
	result.WorkflowWritten, err = s.workflows.Write(result.WorkflowPath, RenderWorkflow(wf), func() (bool, error) {
		no := false
		return s.prompter.AskYesNo(fmt.Sprintf("%s already exists, overwrite?", result.WorkflowPath), &no)
	})
	if err != nil {
		return ConfigureResult{}, err
	}
	if result.WorkflowWritten {
		s.prompter.Say("Created " + result.WorkflowPath)
	}

	if _, err := s.auth.Authenticate(ctx); err != nil {
		return ConfigureResult{}, err
	}

	spec := model.NewGitHubActionSpec(repo, envName, model.WorkflowFilename)
	if err := s.publishers.Configure(ctx, pkg.Name, spec); err != nil {
		return ConfigureResult{}, err
	}

	return result, nil
}

func (s *ConfigureService) checkRelease(ctx context.Context, gem, dir string) error {
	out, err := s.release.Check(ctx, dir)
	if err == nil {
		return nil
	}
	if strings.TrimSpace(out) == "" {
		out = err.Error()
	}
	return model.Preconditionf("bundle exec rake release is not configured for %s in %s:\n%s", gem, dir, out)
}

// provisionEnvironment asks whether to use a GitHub environment and makes
// sure it exists. A nil environment means the operator declined.
func (s *ConfigureService) provisionEnvironment(ctx context.Context, repo model.RepositoryIdentity) (*model.Environment, error) {
	add, err := s.prompter.AskYesNo("Would you like to add a github environment to allow customizing prerequisites for the action?", nil)
	if err != nil {
		return nil, err
	}
	if !add {
		return nil, nil
	}

	s.prompter.Say(fmt.Sprintf("Adding GitHub environment to %s to protect the action", repo.FullName()))
	env, created, err := s.environments.Ensure(ctx, repo, s.registry.Host)
	if err != nil {
		return nil, err
	}
	if created {
		s.prompter.Say(fmt.Sprintf("Created environment '%s' for %s:\n  %s", env.Name, repo.FullName(), env.URL))
	} else {
		s.prompter.Say(fmt.Sprintf("Environment '%s' already exists for %s:\n  %s", env.Name, repo.FullName(), env.URL))
	}
	return &env, nil
}

func (s *ConfigureService) askTrigger(gem string) (model.TriggerMode, error) {
	modes := model.TriggerModes()
	choices := make([]string, len(modes))
	def := 0
	for i, m := range modes {
		choices[i] = m.Description()
		if m == model.DefaultTriggerMode {
			def = i
		}
	}

	idx, err := s.prompter.AskChoice(fmt.Sprintf("How would you like releases for %s to be triggered?", gem), choices, def)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(modes) {
		return "", fmt.Errorf("invalid trigger choice %d", idx)
	}
	return modes[idx], nil
}

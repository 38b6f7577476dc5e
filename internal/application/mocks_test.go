package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// --- Mock TrustedPublisherStore ---

type mockPublisherStore struct {
	records []model.ExistingPublisherRecord
	listErr error
	created []model.TrustedPublisherSpec
	create  func(spec model.TrustedPublisherSpec) error
	lists   int
}

func (m *mockPublisherStore) List(_ context.Context, _ string) ([]model.ExistingPublisherRecord, error) {
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockPublisherStore) Create(_ context.Context, _ string, spec model.TrustedPublisherSpec) error {
	if m.create != nil {
		if err := m.create(spec); err != nil {
			return err
		}
	}
	m.created = append(m.created, spec)
	m.records = append(m.records, recordFor(spec, "push_gem.yml on "+spec.RepositoryOwner+"/"+spec.RepositoryName))
	return nil
}

// recordFor returns the record the registry would list after creating spec.
func recordFor(spec model.TrustedPublisherSpec, name string) model.ExistingPublisherRecord {
	attrs := map[string]any{model.AttrName: name}
	for k, v := range spec.Fields() {
		attrs[k] = v
	}
	return model.ExistingPublisherRecord{Type: spec.Type, Attributes: attrs}
}

// --- Mock EnvironmentHost ---

type mockEnvironmentHost struct {
	precheckErr error
	envs        []model.Environment
	listErr     error
	createErr   error
	created     []string
}

func (m *mockEnvironmentHost) Precheck(_ context.Context) error {
	return m.precheckErr
}

func (m *mockEnvironmentHost) ListEnvironments(_ context.Context, _ model.RepositoryIdentity) ([]model.Environment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.envs, nil
}

func (m *mockEnvironmentHost) CreateEnvironment(_ context.Context, repo model.RepositoryIdentity, name string) (model.Environment, error) {
	if m.createErr != nil {
		return model.Environment{}, m.createErr
	}
	m.created = append(m.created, name)
	env := model.Environment{
		Name: name,
		URL:  fmt.Sprintf("https://github.com/%s/settings/environments/1", repo.FullName()),
	}
	m.envs = append(m.envs, env)
	return env, nil
}

// --- Mock ManifestSource ---

type mockManifestSource struct {
	pkgs []model.Package
	err  error
}

func (m *mockManifestSource) Packages(_ context.Context, _ string) ([]model.Package, error) {
	return m.pkgs, m.err
}

// --- Mock ReleaseChecker ---

type mockReleaseChecker struct {
	output string
	err    error
}

func (m *mockReleaseChecker) Check(_ context.Context, _ string) (string, error) {
	return m.output, m.err
}

// --- Mock RegistryAuthClient ---

type mockAuth struct {
	calls int
	err   error
}

func (m *mockAuth) Authenticate(_ context.Context) (model.Credential, error) {
	m.calls++
	if m.err != nil {
		return model.Credential{}, m.err
	}
	return model.Credential{Key: "rubygems_test"}, nil
}

func (m *mockAuth) AttachCredential(req *http.Request, cred model.Credential) {
	req.Header.Set("Authorization", cred.Key)
}

func (m *mockAuth) HandleMFAChallenge(_ context.Context, _ int, _ []byte) (bool, error) {
	return false, nil
}

// --- Scripted Prompter ---

// scriptedPrompter answers yes/no and choice prompts in order and records
// every message shown.
type scriptedPrompter struct {
	yesNo   []bool
	choices []int
	asked   []string
	said    []string
}

func (p *scriptedPrompter) Say(msg string) { p.said = append(p.said, msg) }

func (p *scriptedPrompter) Ask(query string) (string, error) {
	return "", errors.New("unexpected prompt: " + query)
}

func (p *scriptedPrompter) AskSecret(query string) (string, error) {
	return "", errors.New("unexpected secret prompt: " + query)
}

func (p *scriptedPrompter) AskYesNo(query string, _ *bool) (bool, error) {
	p.asked = append(p.asked, query)
	if len(p.yesNo) == 0 {
		return false, errors.New("unexpected yes/no prompt: " + query)
	}
	answer := p.yesNo[0]
	p.yesNo = p.yesNo[1:]
	return answer, nil
}

func (p *scriptedPrompter) AskChoice(query string, _ []string, _ int) (int, error) {
	p.asked = append(p.asked, query)
	if len(p.choices) == 0 {
		return 0, errors.New("unexpected choice prompt: " + query)
	}
	answer := p.choices[0]
	p.choices = p.choices[1:]
	return answer, nil
}

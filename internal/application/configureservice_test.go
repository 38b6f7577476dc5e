package application

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

const (
	testDir          = "/src/foo"
	testWorkflowPath = "/src/foo/.github/workflows/push_gem.yml"
)

var testRegistry = Registry{URL: "https://rubygems.org", Host: "rubygems.org"}

// configureFixture holds a ConfigureService and every fake behind it.
type configureFixture struct {
	fs        afero.Fs
	manifests *mockManifestSource
	release   *mockReleaseChecker
	host      *mockEnvironmentHost
	auth      *mockAuth
	store     *mockPublisherStore
	prompter  *scriptedPrompter
	svc       *ConfigureService
}

func newConfigureFixture() *configureFixture {
	f := &configureFixture{
		fs: afero.NewMemMapFs(),
		manifests: &mockManifestSource{pkgs: []model.Package{{
			Name:     "foo",
			Path:     "foo.gemspec",
			Metadata: map[string]string{model.MetadataSourceCodeURI: "https://github.com/acme/foo"},
		}}},
		release:  &mockReleaseChecker{},
		host:     &mockEnvironmentHost{},
		auth:     &mockAuth{},
		store:    &mockPublisherStore{},
		prompter: &scriptedPrompter{},
	}
	f.svc = NewConfigureService(
		f.manifests,
		f.release,
		NewEnvironmentService(f.host),
		NewWorkflowSynthesizer(f.fs),
		f.auth,
		NewTrustedPublisherService(f.store),
		f.prompter,
		testRegistry,
	)
	return f
}

func (f *configureFixture) run(t *testing.T, req ConfigureRequest) (ConfigureResult, error) {
	t.Helper()
	if req.RepositoryDir == "" {
		req.RepositoryDir = testDir
	}
	return f.svc.Configure(context.Background(), req)
}

func TestRegistryURLs(t *testing.T) {
	r := Registry{URL: "https://rubygems.org/", Host: "rubygems.org"}

	assert.Equal(t, "https://rubygems.org/gems/foo", r.GemURL("foo"))
	assert.Equal(t, "https://rubygems.org/gems/foo/trusted_publishers", r.ConfigurationURL("foo"))
}

func TestConfigure_HappyPathWithEnvironment(t *testing.T) {
	f := newConfigureFixture()
	f.prompter.yesNo = []bool{true}
	f.prompter.choices = []int{1}

	result, err := f.run(t, ConfigureRequest{})

	require.NoError(t, err)
	assert.Equal(t, "foo", result.Gem)
	assert.Equal(t, testRepo, result.Repository)
	assert.True(t, result.WorkflowWritten)
	assert.Equal(t, testWorkflowPath, result.WorkflowPath)
	assert.Equal(t, "https://rubygems.org/gems/foo/trusted_publishers", result.ConfigurationURL)
	require.NotNil(t, result.Environment)
	assert.Equal(t, "rubygems.org", result.Environment.Name)

	assert.Equal(t, []string{"rubygems.org"}, f.host.created)
	assert.Equal(t, 1, f.auth.calls)

	require.Len(t, f.store.created, 1)
	assert.Equal(t, model.TrustedPublisherSpec{
		Type:             model.PublisherTypeGitHubAction,
		RepositoryOwner:  "acme",
		RepositoryName:   "foo",
		Environment:      "rubygems.org",
		WorkflowFilename: "push_gem.yml",
	}, f.store.created[0])

	data, err := afero.ReadFile(f.fs, testWorkflowPath)
	require.NoError(t, err)
	assert.Equal(t, goldenManualWithEnvironment, string(data))

	assert.Equal(t, []string{
		"Configuring trusted publisher for foo in /src/foo for acme/foo",
		"Adding GitHub environment to acme/foo to protect the action",
		"Created environment 'rubygems.org' for acme/foo:\n  https://github.com/acme/foo/settings/environments/1",
		"Created " + testWorkflowPath,
	}, f.prompter.said)
	assert.Equal(t, []string{
		"Would you like to add a github environment to allow customizing prerequisites for the action?",
		"How would you like releases for foo to be triggered?",
	}, f.prompter.asked)
}

func TestConfigure_ExistingEnvironmentIsReused(t *testing.T) {
	f := newConfigureFixture()
	f.host.envs = []model.Environment{{Name: "rubygems.org", URL: "https://github.com/acme/foo/settings/environments/9"}}
	f.prompter.yesNo = []bool{true}
	f.prompter.choices = []int{0}

	_, err := f.run(t, ConfigureRequest{})

	require.NoError(t, err)
	assert.Empty(t, f.host.created)
	assert.Contains(t, f.prompter.said, "Environment 'rubygems.org' already exists for acme/foo:\n  https://github.com/acme/foo/settings/environments/9")
}

func TestConfigure_WithoutEnvironment(t *testing.T) {
	f := newConfigureFixture()
	f.host.precheckErr = errors.New("must not be called")
	f.prompter.yesNo = []bool{false}
	f.prompter.choices = []int{0}

	result, err := f.run(t, ConfigureRequest{})

	require.NoError(t, err)
	assert.Nil(t, result.Environment)
	require.Len(t, f.store.created, 1)
	assert.Empty(t, f.store.created[0].Environment)

	data, err := afero.ReadFile(f.fs, testWorkflowPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "      - 'v*'")
	assert.NotContains(t, string(data), "environment:")
}

func TestConfigure_ExistingMatchIsConflictWithoutCreate(t *testing.T) {
	f := newConfigureFixture()
	spec := model.NewGitHubActionSpec(testRepo, "", model.WorkflowFilename)
	f.store.records = []model.ExistingPublisherRecord{recordFor(spec, "push_gem.yml @ acme/foo")}
	f.prompter.yesNo = []bool{false}
	f.prompter.choices = []int{1}

	_, err := f.run(t, ConfigureRequest{})

	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "push_gem.yml @ acme/foo", conflict.ExistingName)
	assert.Empty(t, f.store.created)
}

func TestConfigure_EnvironmentCreateFailureStopsBeforeRegistry(t *testing.T) {
	f := newConfigureFixture()
	f.host.createErr = &model.HostCLIError{
		Action:  "create rubygems.org environment for acme/foo",
		Command: "gh api --method PUT repos/acme/foo/environments/rubygems.org",
		Output:  "HTTP 403: Must have admin rights to Repository.",
	}
	f.prompter.yesNo = []bool{true}

	_, err := f.run(t, ConfigureRequest{})

	var cliErr *model.HostCLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Contains(t, err.Error(), "Must have admin rights")
	assert.Zero(t, f.auth.calls)
	assert.Zero(t, f.store.lists)
	assert.Empty(t, f.store.created)

	exists, err := afero.Exists(f.fs, testWorkflowPath)
	require.NoError(t, err)
	assert.False(t, exists, "workflow must not be written after a failed environment step")
}

func TestConfigure_RegistryListFailureSkipsCreate(t *testing.T) {
	f := newConfigureFixture()
	f.store.listErr = &model.RegistryRequestError{Op: "get", Gem: "foo", Status: 500, Body: "Internal Server Error"}
	f.prompter.yesNo = []bool{false}
	f.prompter.choices = []int{1}

	_, err := f.run(t, ConfigureRequest{})

	var rre *model.RegistryRequestError
	require.ErrorAs(t, err, &rre)
	assert.Contains(t, err.Error(), "foo")
	assert.Contains(t, err.Error(), "Internal Server Error")
	assert.Empty(t, f.store.created)
}

func TestConfigure_SecondRunConflicts(t *testing.T) {
	f := newConfigureFixture()
	f.prompter.yesNo = []bool{false}
	f.prompter.choices = []int{1}
	_, err := f.run(t, ConfigureRequest{})
	require.NoError(t, err)

	f.prompter.yesNo = []bool{false, false}
	f.prompter.choices = []int{1}
	f.prompter.asked = nil
	result, err := f.run(t, ConfigureRequest{})

	var conflict *model.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.False(t, result.WorkflowWritten)
	assert.Len(t, f.store.created, 1)
	assert.Contains(t, f.prompter.asked, testWorkflowPath+" already exists, overwrite?")
}

func TestConfigure_AuthenticationFailureSkipsRegistry(t *testing.T) {
	f := newConfigureFixture()
	f.auth.err = &model.AuthenticationError{Host: "rubygems.org", Status: 401, Body: "Invalid credentials"}
	f.prompter.yesNo = []bool{false}
	f.prompter.choices = []int{1}

	_, err := f.run(t, ConfigureRequest{})

	var authErr *model.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, f.store.lists)
}

func TestConfigure_ReleaseNotConfigured(t *testing.T) {
	f := newConfigureFixture()
	f.release.output = "Don't know how to build task 'release'"
	f.release.err = errors.New("exit status 1")

	_, err := f.run(t, ConfigureRequest{})

	var pe *model.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bundle exec rake release is not configured for foo in /src/foo:\nDon't know how to build task 'release'", pe.Reason)
	assert.Empty(t, f.prompter.asked)
}

func TestConfigure_NoRepositoryIsPrecondition(t *testing.T) {
	f := newConfigureFixture()
	f.manifests.pkgs = []model.Package{{Name: "foo", Homepage: "https://foo.example.com"}}

	_, err := f.run(t, ConfigureRequest{})

	var pe *model.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, f.prompter.asked)
}

func TestConfigure_NameOverride(t *testing.T) {
	f := newConfigureFixture()
	f.prompter.yesNo = []bool{false}
	f.prompter.choices = []int{1}

	result, err := f.run(t, ConfigureRequest{GemName: "foo-pro"})

	require.NoError(t, err)
	assert.Equal(t, "foo-pro", result.Gem)
	assert.Equal(t, "https://rubygems.org/gems/foo-pro/trusted_publishers", result.ConfigurationURL)
}

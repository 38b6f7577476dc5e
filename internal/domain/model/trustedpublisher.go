package model

// PublisherType identifies the kind of trusted publisher the registry stores.
type PublisherType string

const (
	// PublisherTypeGitHubAction is a GitHub Actions workflow authenticated via OIDC.
	PublisherTypeGitHubAction PublisherType = "OIDC::TrustedPublisher::GitHubAction"
)

// Attribute keys of a GitHub Actions trusted publisher as the registry names them.
const (
	AttrRepositoryOwner  = "repository_owner"
	AttrRepositoryName   = "repository_name"
	AttrEnvironment      = "environment"
	AttrWorkflowFilename = "workflow_filename"
	AttrName             = "name"
)

// TrustedPublisherSpec is the candidate trusted publisher sent to the registry.
// An empty Environment means the key is absent, not an empty string.
type TrustedPublisherSpec struct {
	Type             PublisherType
	RepositoryOwner  string
	RepositoryName   string
	Environment      string
	WorkflowFilename string
}

// NewGitHubActionSpec builds the spec for a workflow in the given repository.
func NewGitHubActionSpec(repo RepositoryIdentity, environment, workflowFilename string) TrustedPublisherSpec {
	return TrustedPublisherSpec{
		Type:             PublisherTypeGitHubAction,
		RepositoryOwner:  repo.Owner,
		RepositoryName:   repo.Name,
		Environment:      environment,
		WorkflowFilename: workflowFilename,
	}
}

// Fields returns the keys the spec explicitly sets. It is both the creation
// payload and the set of keys compared by ExistingPublisherRecord.Matches.
func (s TrustedPublisherSpec) Fields() map[string]string {
	fields := map[string]string{
		AttrRepositoryName:   s.RepositoryName,
		AttrRepositoryOwner:  s.RepositoryOwner,
		AttrWorkflowFilename: s.WorkflowFilename,
	}
	if s.Environment != "" {
		fields[AttrEnvironment] = s.Environment
	}
	return fields
}

// ExistingPublisherRecord is a trusted publisher returned by the registry.
// Only the type and the attribute map are interpreted.
type ExistingPublisherRecord struct {
	Type       PublisherType
	Attributes map[string]any
}

// Name returns the registry's human-readable name for the record, or "" if
// the registry did not send one.
func (r ExistingPublisherRecord) Name() string {
	name, _ := r.Attributes[AttrName].(string)
	return name
}

// Matches reports whether the record is equivalent to spec: same type and
// every key spec sets has the same value on the record. Keys absent from spec
// are not compared.
func (r ExistingPublisherRecord) Matches(spec TrustedPublisherSpec) bool {
	if r.Type != spec.Type {
		return false
	}
	for key, want := range spec.Fields() {
		got, ok := r.Attributes[key].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// FindMatch returns the first record equivalent to spec.
func FindMatch(records []ExistingPublisherRecord, spec TrustedPublisherSpec) (ExistingPublisherRecord, bool) {
	for _, r := range records {
		if r.Matches(spec) {
			return r, true
		}
	}
	return ExistingPublisherRecord{}, false
}

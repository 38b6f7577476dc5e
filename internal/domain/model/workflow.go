package model

// WorkflowFilename is the release workflow file name. The registry matches it
// against the workflow that requests an OIDC token.
const WorkflowFilename = "push_gem.yml"

// WorkflowPath is where the release workflow lives, relative to the repository root.
const WorkflowPath = ".github/workflows/" + WorkflowFilename

// EnvironmentBinding attaches the release job to a GitHub environment.
type EnvironmentBinding struct {
	Name string
	URL  string
}

// WorkflowSpec holds every input of the rendered release workflow.
type WorkflowSpec struct {
	Trigger     TriggerMode
	Repository  RepositoryIdentity
	Environment *EnvironmentBinding
}

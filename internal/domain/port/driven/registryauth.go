package driven

import (
	"context"
	"net/http"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// RegistryAuthClient defines the driven port for authenticating to the gem
// registry. The MFA step-up is explicit rather than hidden in a transport.
type RegistryAuthClient interface {
	// Authenticate returns a usable credential for the registry host. A
	// pre-supplied or previously obtained key is returned without network
	// calls; otherwise the operator is asked to sign in.
	Authenticate(ctx context.Context) (model.Credential, error)

	// AttachCredential adds the credential and any known one-time code to req.
	AttachCredential(req *http.Request, cred model.Credential)

	// HandleMFAChallenge inspects a response status and body and, if they form
	// an MFA challenge, obtains a one-time code from the operator. retry
	// reports whether the request should be sent again with the new code.
	HandleMFAChallenge(ctx context.Context, status int, body []byte) (retry bool, err error)
}

package rubygems

import (
	"sync"

	"github.com/opentofu/svchost"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// CredentialCache holds at most one credential per registry host for the
// lifetime of the process. Nothing in it is ever written to disk.
type CredentialCache struct {
	mu    sync.RWMutex
	creds map[svchost.Hostname]model.Credential
}

// NewCredentialCache creates an empty cache.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{
		creds: make(map[svchost.Hostname]model.Credential),
	}
}

// Get returns the credential cached for host.
func (c *CredentialCache) Get(host svchost.Hostname) (model.Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cred, ok := c.creds[host]
	return cred, ok
}

// Set stores cred under its host, replacing any previous credential.
func (c *CredentialCache) Set(cred model.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds[cred.Host] = cred
}

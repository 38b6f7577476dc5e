// Package model holds the domain types of trusted publisher configuration.
package model

// RepositoryIdentity is the GitHub owner/name pair a trusted publisher and
// its release workflow are bound to. It is resolved once per run and the
// same value is passed to every consumer.
type RepositoryIdentity struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form used by GitHub.
func (r RepositoryIdentity) FullName() string {
	return r.Owner + "/" + r.Name
}

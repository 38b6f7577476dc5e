package model

import (
	"log/slog"

	"github.com/opentofu/svchost"
)

const redacted = "[REDACTED]"

// Credential holds a registry API key scoped to a single host. It lives only
// in process memory and redacts itself when printed or logged.
type Credential struct {
	Host svchost.Hostname
	Key  string
}

// IsZero reports whether the credential carries no key.
func (c Credential) IsZero() bool {
	return c.Key == ""
}

func (c Credential) String() string {
	return c.Host.ForDisplay() + ":" + redacted
}

// LogValue implements slog.LogValuer so the key never reaches a log handler.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", c.Host.ForDisplay()),
		slog.String("key", redacted),
	)
}

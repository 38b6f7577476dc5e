// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// DefaultRubyGemsHost is the registry used when RUBYGEMS_HOST is unset.
const DefaultRubyGemsHost = "https://rubygems.org"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// RubyGemsHost is the registry root URL, without a trailing slash.
	RubyGemsHost string
	// APIKey is a pre-supplied registry key. When set, no sign-in happens.
	APIKey string
	// OTP is a pre-supplied one-time code for MFA-protected accounts.
	OTP string
	// GitHubToken selects the GitHub REST API for environment provisioning
	// instead of the gh CLI.
	GitHubToken string
	// NoColor disables colored terminal output.
	NoColor bool
}

// HasGitHubToken reports whether environments should be managed through the
// REST API rather than the gh CLI.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: GEM_HOST_API_KEY, GEM_HOST_OTP_CODE,
// CTP_GITHUB_TOKEN and NO_COLOR. RUBYGEMS_HOST defaults to https://rubygems.org
// and must be an absolute http or https URL.
func Load() (*Config, error) {
	host := DefaultRubyGemsHost
	if v, ok := os.LookupEnv("RUBYGEMS_HOST"); ok && strings.TrimSpace(v) != "" {
		u, err := url.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("RUBYGEMS_HOST has invalid URL %q: %w", v, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("RUBYGEMS_HOST must be an absolute http or https URL, got %q", v)
		}
		host = strings.TrimSuffix(u.String(), "/")
	}

	// NO_COLOR disables color when present with any non-empty value (no-color.org).
	noColor := os.Getenv("NO_COLOR") != ""

	return &Config{
		RubyGemsHost: host,
		APIKey:       strings.TrimSpace(os.Getenv("GEM_HOST_API_KEY")),
		OTP:          strings.TrimSpace(os.Getenv("GEM_HOST_OTP_CODE")),
		GitHubToken:  strings.TrimSpace(os.Getenv("CTP_GITHUB_TOKEN")),
		NoColor:      noColor,
	}, nil
}

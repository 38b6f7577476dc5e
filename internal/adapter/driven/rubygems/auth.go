package rubygems

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

// Scope is the API key scope requested at sign-in. It is the only permission
// the configuration flow needs.
const Scope = "configure_trusted_publishers"

// keyLifetime bounds the key created at sign-in. The registry enforces it.
const keyLifetime = 15 * time.Minute

// mfaChallengePrefix starts the body of a 401 that asks for a one-time code.
const mfaChallengePrefix = "You have enabled multifactor authentication"

// profile is the subset of /api/v1/profile/me.yaml read during sign-in.
type profile struct {
	Handle  string `yaml:"handle"`
	MFA     string `yaml:"mfa"`
	Warning string `yaml:"warning"`
}

// Authenticate returns the credential for the registry host. A cached key
// wins, then the pre-supplied key; otherwise the operator signs in, which
// happens at most once per host per process.
func (c *Client) Authenticate(ctx context.Context) (model.Credential, error) {
	if cred, ok := c.cache.Get(c.host); ok {
		return cred, nil
	}

	if c.apiKey != "" {
		cred := model.Credential{Host: c.host, Key: c.apiKey}
		c.cache.Set(cred)
		slog.Debug("using pre-supplied api key", "credential", cred)
		return cred, nil
	}

	return c.signIn(ctx)
}

// AttachCredential sets the Authorization header. RubyGems expects the bare
// key, without a scheme.
func (c *Client) AttachCredential(req *http.Request, cred model.Credential) {
	req.Header.Set("Authorization", cred.Key)
}

// HandleMFAChallenge asks the operator for a one-time code when the registry
// reports that multi-factor authentication is required.
func (c *Client) HandleMFAChallenge(_ context.Context, status int, body []byte) (bool, error) {
	if status != http.StatusUnauthorized || !strings.HasPrefix(string(body), mfaChallengePrefix) {
		return false, nil
	}

	c.prompter.Say("You have enabled multi-factor authentication. Please enter OTP code.")
	code, err := c.prompter.Ask("Code:")
	if err != nil {
		return false, fmt.Errorf("reading one-time code: %w", err)
	}
	c.otp = strings.TrimSpace(code)
	return true, nil
}

func (c *Client) signIn(ctx context.Context) (model.Credential, error) {
	display := c.host.ForDisplay()
	c.prompter.Say(fmt.Sprintf("Enter your %s credentials.", display))
	c.prompter.Say(fmt.Sprintf("Don't have an account yet? Create one at %s/sign_up", c.URL()))

	identifier, err := c.prompter.Ask("Username/email:")
	if err != nil {
		return model.Credential{}, fmt.Errorf("reading username: %w", err)
	}
	password, err := c.prompter.AskSecret("Password:")
	if err != nil {
		return model.Credential{}, fmt.Errorf("reading password: %w", err)
	}
	identifier = strings.TrimSpace(identifier)
	basicAuth := func(req *http.Request) { req.SetBasicAuth(identifier, password) }

	p, err := c.fetchProfile(ctx, basicAuth)
	if err != nil {
		return model.Credential{}, err
	}
	slog.Debug("fetched registry profile", "handle", p.Handle, "mfa", p.MFA)
	if p.Warning != "" {
		c.prompter.Say(p.Warning)
	}

	now := c.now()
	keyName := signInKeyName(now)
	form := url.Values{}
	form.Set("name", keyName)
	form.Set(Scope, "true")
	form.Set("expires_at", now.Add(keyLifetime).Format("2006-01-02 15:04 MST"))
	form.Set("mfa", "false")
	encoded := form.Encode()

	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "api/v1/api_key",
		mediaType: "application/x-www-form-urlencoded",
		body:      func() io.Reader { return strings.NewReader(encoded) },
		auth:      basicAuth,
	})
	if err != nil {
		return model.Credential{}, err
	}
	if resp.status < 200 || resp.status > 299 {
		return model.Credential{}, &model.AuthenticationError{Host: display, Status: resp.status, Body: string(resp.body)}
	}

	cred := model.Credential{Host: c.host, Key: strings.TrimSpace(string(resp.body))}
	c.cache.Set(cred)
	c.prompter.Say(fmt.Sprintf("Signed in with API key: %s.", keyName))
	slog.Info("signed in to registry", "credential", cred, "key_name", keyName)

	return cred, nil
}

func (c *Client) fetchProfile(ctx context.Context, auth func(*http.Request)) (profile, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "api/v1/profile/me.yaml",
		auth:   auth,
	})
	if err != nil {
		return profile{}, err
	}
	if resp.status != http.StatusOK {
		return profile{}, &model.AuthenticationError{Host: c.host.ForDisplay(), Status: resp.status, Body: string(resp.body)}
	}

	var p profile
	if err := yaml.Unmarshal(resp.body, &p); err != nil {
		return profile{}, fmt.Errorf("decoding profile: %w", err)
	}
	return p, nil
}

// signInKeyName names the short-lived key after the machine, the local user
// and the time, so it is recognisable on the registry's API keys page.
func signInKeyName(now time.Time) string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown-host"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "unknown-user"
	}
	return fmt.Sprintf("%s-%s-%s", hostname, user, now.Format("20060102150405"))
}

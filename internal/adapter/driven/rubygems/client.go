// Package rubygems implements the RegistryAuthClient and TrustedPublisherStore
// ports against the RubyGems.org HTTP API.
package rubygems

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/opentofu/svchost"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.RegistryAuthClient    = (*Client)(nil)
	_ driven.TrustedPublisherStore = (*Client)(nil)
)

// DefaultHost is the registry used when none is configured.
const DefaultHost = "https://rubygems.org"

// Options configures a Client.
type Options struct {
	// BaseURL is the registry root, e.g. "https://rubygems.org".
	BaseURL string
	// APIKey is a pre-supplied key (GEM_HOST_API_KEY). When set, no sign-in happens.
	APIKey string
	// OTP is a pre-supplied one-time code sent with every request.
	OTP string
	// Cache is shared between clients; a fresh one is created when nil.
	Cache *CredentialCache
	// Now is the clock used for sign-in key naming and expiry. Defaults to time.Now.
	Now func() time.Time
}

// Client talks to a single registry host. It is not safe for concurrent use;
// the configuration flow is strictly sequential.
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	host     svchost.Hostname
	prompter driven.Prompter
	apiKey   string
	otp      string
	cache    *CredentialCache
	now      func() time.Time
}

// NewClient creates a registry client on a pooled go-cleanhttp client. No
// retrying transport is installed: every failure surfaces to the caller.
func NewClient(opts Options, prompter driven.Prompter) (*Client, error) {
	return NewClientWithHTTPClient(cleanhttp.DefaultPooledClient(), opts, prompter)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, opts Options, prompter driven.Prompter) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultHost
	}
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing registry URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("registry URL %q must use http or https", base)
	}
	host, err := svchost.ForComparison(u.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid registry host %q: %w", u.Host, err)
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewCredentialCache()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		http:     httpClient,
		baseURL:  u,
		host:     host,
		prompter: prompter,
		apiKey:   opts.APIKey,
		otp:      opts.OTP,
		cache:    cache,
		now:      now,
	}, nil
}

// Host returns the normalized registry host.
func (c *Client) Host() svchost.Hostname {
	return c.host
}

// URL returns the registry root URL as configured.
func (c *Client) URL() string {
	return c.baseURL.String()
}

// request describes one registry call. body is a function so the payload can
// be rebuilt when the request is resent after an MFA challenge.
type request struct {
	method    string
	path      string
	accept    string
	mediaType string
	body      func() io.Reader
	auth      func(req *http.Request)
}

type response struct {
	status int
	body   []byte
}

// do sends r and, if the registry answers with an MFA challenge, sends it
// once more with the one-time code the operator supplied.
func (c *Client) do(ctx context.Context, r request) (response, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return response{}, err
	}

	retry, err := c.HandleMFAChallenge(ctx, resp.status, resp.body)
	if err != nil {
		return response{}, err
	}
	if !retry {
		return resp, nil
	}

	return c.send(ctx, r)
}

func (c *Client) send(ctx context.Context, r request) (response, error) {
	u := c.baseURL.JoinPath(r.path)

	var body io.Reader
	if r.body != nil {
		body = r.body()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return response{}, fmt.Errorf("building %s %s: %w", r.method, r.path, err)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.mediaType != "" {
		req.Header.Set("Content-Type", r.mediaType)
	}
	if c.otp != "" {
		req.Header.Set("OTP", c.otp)
	}
	if r.auth != nil {
		r.auth(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", r.method, u.Redacted(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("reading %s %s response: %w", r.method, r.path, err)
	}

	slog.Debug("registry api call",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"otp", c.otp != "",
	)

	return response{status: resp.StatusCode, body: data}, nil
}

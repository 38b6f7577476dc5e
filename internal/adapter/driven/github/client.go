// Package github implements the EnvironmentHost port, either through the
// GitHub REST API (go-github) or through the gh CLI.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EnvironmentHost = (*Client)(nil)

// Client implements the driven.EnvironmentHost port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// Precheck verifies the token by fetching the authenticated user, so a bad
// CTP_GITHUB_TOKEN is reported before any environment is touched.
func (c *Client) Precheck(ctx context.Context) error {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnauthorized {
			return model.Preconditionf("The GitHub token in CTP_GITHUB_TOKEN was rejected: %s", ghErr.Message)
		}
		return &model.HostAPIError{Action: "verify GitHub token", Err: err}
	}
	logRateLimit(resp, "user", 0, 1)
	slog.Debug("github token verified", "login", user.GetLogin())
	return nil
}

// ListEnvironments retrieves all deployment environments of repo.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) ListEnvironments(ctx context.Context, repo model.RepositoryIdentity) ([]model.Environment, error) {
	opts := &gh.EnvironmentListOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []model.Environment

	for {
		envs, resp, err := c.gh.Repositories.ListEnvironments(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, &model.HostAPIError{
				Action: fmt.Sprintf("list environments for %s (page %d)", repo.FullName(), opts.Page),
				Err:    err,
			}
		}

		logRateLimit(resp, repo.FullName(), opts.Page, len(envs.Environments))

		for _, e := range envs.Environments {
			all = append(all, mapEnvironment(e))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if all == nil {
		all = []model.Environment{}
	}

	return all, nil
}

// CreateEnvironment creates the named environment on repo with no protection
// rules; operators add those on GitHub afterwards.
func (c *Client) CreateEnvironment(ctx context.Context, repo model.RepositoryIdentity, name string) (model.Environment, error) {
	env, _, err := c.gh.Repositories.CreateUpdateEnvironment(ctx, repo.Owner, repo.Name, name, &gh.CreateUpdateEnvironment{})
	if err != nil {
		return model.Environment{}, &model.HostAPIError{
			Action: fmt.Sprintf("create %s environment for %s", name, repo.FullName()),
			Err:    err,
		}
	}
	return mapEnvironment(env), nil
}

// mapEnvironment converts a go-github Environment to a domain model Environment.
func mapEnvironment(e *gh.Environment) model.Environment {
	return model.Environment{
		Name: e.GetName(),
		URL:  e.GetHTMLURL(),
	}
}

// logRateLimit logs the current rate limit state from a GitHub API response.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

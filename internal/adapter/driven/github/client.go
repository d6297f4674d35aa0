// Package github implements the GitHubClient and SessionBroker ports using
// the go-github library.
package github

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port for one repository.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewClient wraps an already-authenticated go-github client, scoping it to
// the given repository.
func NewClient(client *gh.Client, owner, repo string) *Client {
	return &Client{gh: client, owner: owner, repo: repo}
}

// newInstallationHTTPClient builds the go-github client used with a freshly
// minted installation token, with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github with bearer token auth
func newInstallationHTTPClient(token string) *gh.Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	return gh.NewClient(rateLimitClient).WithAuthToken(token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, owner, repo string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client, owner: owner, repo: repo}, nil
}

// wrapErr converts a go-github call failure into an UpstreamError, tagging
// not-found and auth-failure cases so callers can degrade or re-authenticate.
func wrapErr(op string, resp *gh.Response, err error) error {
	ue := &model.UpstreamError{Op: op, Err: err}
	if resp != nil {
		ue.StatusCode = resp.StatusCode
		ue.NotFound = resp.StatusCode == http.StatusNotFound
		ue.AuthFailure = resp.StatusCode == http.StatusUnauthorized
	}
	return ue
}

// logRateLimit logs the GitHub API rate limit status after each call.
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

package github

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v82/github"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionBroker = (*Broker)(nil)

// Broker implements the driven.SessionBroker port. It holds the long-lived
// app identity (ID + signing key inside an AppsTransport) and exchanges it
// for repository-scoped installation tokens on demand.
type Broker struct {
	appClient *gh.Client
	owner     string
	repo      string

	// newInstallationClient builds the token-authenticated client for a
	// minted installation token. Overridable for tests.
	newInstallationClient func(token string) *gh.Client
}

// NewBroker validates the app private key and prepares the JWT-signing app
// client. A key that does not parse is a ConfigError, raised here before any
// network call.
func NewBroker(appID int64, privateKeyPEM []byte, owner, repo string) (*Broker, error) {
	transport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKeyPEM)
	if err != nil {
		return nil, &model.ConfigError{Field: "github app private key", Err: err}
	}

	return &Broker{
		appClient:             gh.NewClient(&http.Client{Transport: transport}),
		owner:                 owner,
		repo:                  repo,
		newInstallationClient: newInstallationHTTPClient,
	}, nil
}

// NewBrokerWithHTTPClient creates a Broker whose app-level and
// installation-level calls all go through the given http.Client and base URL.
// This constructor is intended for testing against an httptest server; it
// performs no JWT signing.
func NewBrokerWithHTTPClient(httpClient *http.Client, baseURL, owner, repo string) (*Broker, error) {
	appClient, err := baseURLClient(httpClient, baseURL)
	if err != nil {
		return nil, err
	}

	return &Broker{
		appClient: appClient,
		owner:     owner,
		repo:      repo,
		newInstallationClient: func(string) *gh.Client {
			c, _ := baseURLClient(httpClient, baseURL)
			return c
		},
	}, nil
}

// Authenticate resolves the app's own login, finds the installation on the
// target repository, and mints a short-lived installation token. The login
// resolution is opportunistic: failure degrades self-comment detection but
// does not abort authentication. A missing installation is an AuthError.
func (b *Broker) Authenticate(ctx context.Context) (*driven.AuthenticatedSession, error) {
	var appLogin string
	app, _, err := b.appClient.Apps.Get(ctx, "")
	switch {
	case err != nil:
		slog.Warn("could not resolve app identity, self-comment detection disabled", "error", err)
	case app.GetSlug() != "":
		// Comments authored via an installation token carry the "[bot]"
		// suffix on the app slug.
		appLogin = app.GetSlug() + "[bot]"
	}

	installation, resp, err := b.appClient.Apps.FindRepositoryInstallation(ctx, b.owner, b.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, &model.AuthError{Reason: "installation not found", Err: err}
		}
		return nil, &model.AuthError{Reason: "resolving installation", Err: err}
	}

	token, _, err := b.appClient.Apps.CreateInstallationToken(ctx, installation.GetID(), nil)
	if err != nil {
		return nil, &model.AuthError{Reason: "creating installation token", Err: err}
	}

	slog.Info("github app session established",
		"installation_id", installation.GetID(),
		"token_expires_at", token.GetExpiresAt().Time,
		"app_login", appLogin,
	)

	return &driven.AuthenticatedSession{
		Client:         NewClient(b.newInstallationClient(token.GetToken()), b.owner, b.repo),
		AppLogin:       appLogin,
		InstallationID: installation.GetID(),
		TokenExpiresAt: token.GetExpiresAt().Time,
	}, nil
}

// baseURLClient builds a go-github client against a non-default base URL.
func baseURLClient(httpClient *http.Client, baseURL string) (*gh.Client, error) {
	client := gh.NewClient(httpClient)
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	client.BaseURL = u
	return client, nil
}

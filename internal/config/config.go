// Package config loads application configuration from environment variables.
package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// Config holds the application configuration loaded from environment
// variables. GitHub App credentials are required: the whole pipeline
// authenticates as an installed app, there is no PAT fallback.
type Config struct {
	ListenAddr    string `env:"TOOLFORGE_LISTEN_ADDR, default=127.0.0.1:8080"`
	AllowedOrigin string `env:"TOOLFORGE_ALLOWED_ORIGIN, default=*"`

	GitHubAppID int64 `env:"TOOLFORGE_GITHUB_APP_ID, required"`
	// GitHubAppPrivateKey is the app's RSA key, either raw PEM or
	// base64-encoded PEM (deployment systems often require single-line
	// values). Use PrivateKeyPEM to read it.
	GitHubAppPrivateKey string `env:"TOOLFORGE_GITHUB_APP_PRIVATE_KEY, required"`
	RepoOwner           string `env:"TOOLFORGE_REPO_OWNER, required"`
	RepoName            string `env:"TOOLFORGE_REPO_NAME, required"`

	GeminiAPIKey string `env:"TOOLFORGE_GEMINI_API_KEY"`
	GeminiModel  string `env:"TOOLFORGE_GEMINI_MODEL, default=gemini-2.5-flash"`

	// PreviewAppSlugs are check-suite app slugs treated as deploy-preview
	// providers in the CI summary.
	PreviewAppSlugs []string `env:"TOOLFORGE_PREVIEW_APPS, default=netlify"`

	AuthTimeout     time.Duration `env:"TOOLFORGE_AUTH_TIMEOUT, default=30s"`
	GenerateTimeout time.Duration `env:"TOOLFORGE_GENERATE_TIMEOUT, default=2m"`

	// TelemetryURL receives best-effort batch telemetry; empty disables it.
	TelemetryURL string `env:"TOOLFORGE_TELEMETRY_URL"`
}

// Load reads configuration from the environment (after loading an optional
// .env file) and returns a validated Config. Missing required variables and
// a malformed private key fail here, before any network call.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, &model.ConfigError{Field: "environment", Err: err}
	}

	if _, err := cfg.PrivateKeyPEM(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RepoFullName returns the target repository as "owner/name".
func (c *Config) RepoFullName() string {
	return c.RepoOwner + "/" + c.RepoName
}

// PrivateKeyPEM returns the app private key as PEM bytes, transparently
// decoding a base64-wrapped value. A value that is not PEM-shaped after
// decoding is a ConfigError.
func (c *Config) PrivateKeyPEM() ([]byte, error) {
	raw := strings.TrimSpace(c.GitHubAppPrivateKey)
	if raw == "" {
		return nil, &model.ConfigError{Field: "TOOLFORGE_GITHUB_APP_PRIVATE_KEY", Err: fmt.Errorf("empty value")}
	}

	if !strings.HasPrefix(raw, "-----BEGIN") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, &model.ConfigError{Field: "TOOLFORGE_GITHUB_APP_PRIVATE_KEY", Err: fmt.Errorf("neither PEM nor base64: %w", err)}
		}
		raw = strings.TrimSpace(string(decoded))
	}

	if !strings.HasPrefix(raw, "-----BEGIN") {
		return nil, &model.ConfigError{Field: "TOOLFORGE_GITHUB_APP_PRIVATE_KEY", Err: fmt.Errorf("decoded value is not PEM-shaped")}
	}

	return []byte(raw + "\n"), nil
}

package driven

import (
	"context"
	"time"
)

// AuthenticatedSession is one authenticated view of the catalog repository,
// backed by a short-lived installation token. The token itself stays inside
// the client's transport and is never exposed or logged.
type AuthenticatedSession struct {
	Client GitHubClient
	// AppLogin is the app's own comment-author login ("<slug>[bot]").
	// Empty when the app identity could not be resolved; self-comment
	// detection then degrades to always-false rather than erroring.
	AppLogin       string
	InstallationID int64
	TokenExpiresAt time.Time
}

// Expired reports whether the session's token is past (or within skew of)
// its expiry and must be replaced before further use.
func (s *AuthenticatedSession) Expired(skew time.Duration) bool {
	return !time.Now().Add(skew).Before(s.TokenExpiresAt)
}

// SessionBroker exchanges the long-lived app identity for an
// AuthenticatedSession scoped to the target repository.
type SessionBroker interface {
	Authenticate(ctx context.Context) (*AuthenticatedSession, error)
}

package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// tokenExpirySkew is how far before the token's actual expiry a cached
// session is already treated as expired, so in-flight requests never ride a
// token that dies mid-call.
const tokenExpirySkew = 2 * time.Minute

// ClientProvider caches the authenticated session for the process lifetime.
// One policy everywhere: cache keyed by installation, single-flight mint
// under the mutex, invalidated on expiry or on an upstream auth failure.
// The session is replaced wholesale, never mutated in place.
type ClientProvider struct {
	mu          sync.Mutex
	broker      driven.SessionBroker
	session     *driven.AuthenticatedSession
	authTimeout time.Duration
}

// NewClientProvider creates a provider around the given broker. authTimeout
// bounds each authentication round trip; a timed-out authentication is fatal
// for the request that triggered it.
func NewClientProvider(broker driven.SessionBroker, authTimeout time.Duration) *ClientProvider {
	return &ClientProvider{
		broker:      broker,
		authTimeout: authTimeout,
	}
}

// Session returns the cached session, re-authenticating first if the token
// is expired or no session exists yet. Concurrent callers block on the same
// mint rather than racing their own.
func (p *ClientProvider) Session(ctx context.Context) (*driven.AuthenticatedSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil && !p.session.Expired(tokenExpirySkew) {
		return p.session, nil
	}

	authCtx, cancel := context.WithTimeout(ctx, p.authTimeout)
	defer cancel()

	session, err := p.broker.Authenticate(authCtx)
	if err != nil {
		return nil, err
	}

	p.session = session
	return session, nil
}

// InvalidateOnAuthFailure drops the cached session when err carries an
// upstream 401, so the next caller mints a fresh token. Any other error
// leaves the cache untouched.
func (p *ClientProvider) InvalidateOnAuthFailure(err error) {
	var upstream *model.UpstreamError
	if !errors.As(err, &upstream) || !upstream.AuthFailure {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		slog.Info("dropping cached github session after auth failure",
			"installation_id", p.session.InstallationID)
		p.session = nil
	}
}

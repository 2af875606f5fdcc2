// Package auth supplies bearer credentials to the submission pipeline,
// either fresh per submission or cached until shortly before expiry.
package auth

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/addissoft/go-eims-client/eims"
	"github.com/addissoft/go-eims-client/eims/model"
)

var logger = log.WithField("component", "eims.auth")

// Authenticator performs the login exchange. api.LoginService satisfies it.
type Authenticator interface {
	Login(ctx context.Context) (model.Credential, error)
}

// Provider hands out a valid bearer token. Implementations are safe for
// concurrent use across simultaneous submissions.
type Provider interface {
	Token(ctx context.Context) (string, error)
	// Invalidate discards any cached credential, forcing a fresh login on
	// the next Token call. Called after the remote rejects a token.
	Invalidate()
}

// NewProvider selects the implementation for the configured cache policy.
// ttl bounds the assumed credential lifetime when the login response does
// not report one; only the cached provider consults it.
func NewProvider(a Authenticator, policy eims.TokenCachePolicy, ttl time.Duration) Provider {
	if policy == eims.TokenCached {
		return &cachedProvider{
			auth:        a,
			ttl:         ttl,
			refreshSkew: 30 * time.Second,
		}
	}
	return &perAttemptProvider{auth: a}
}

type perAttemptProvider struct {
	auth Authenticator
}

func (p *perAttemptProvider) Token(ctx context.Context) (string, error) {
	cred, err := p.auth.Login(ctx)
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

func (p *perAttemptProvider) Invalidate() {}

type cachedProvider struct {
	auth Authenticator
	ttl  time.Duration

	mu   sync.Mutex
	cred model.Credential

	refreshSkew time.Duration
}

func (p *cachedProvider) Token(ctx context.Context) (string, error) {
	// fast path without re-login
	if token, ok := p.currentIfValid(); ok {
		return token, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// double-check after acquiring the lock
	if token, ok := p.currentIfValidLocked(); ok {
		return token, nil
	}

	log.Debug("TokenProvider: no valid cached credential, performing login")
	cred, err := p.auth.Login(ctx)
	if err != nil {
		p.cred = model.Credential{}
		return "", err
	}
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = time.Now().UTC().Add(p.ttl)
	}
	p.cred = cred

	logger.Debug("TokenProvider: credential cached")
	return cred.Token, nil
}

func (p *cachedProvider) currentIfValid() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentIfValidLocked()
}

func (p *cachedProvider) currentIfValidLocked() (string, bool) {
	if !p.cred.Valid(time.Now(), p.refreshSkew) {
		return "", false
	}
	return p.cred.Token, true
}

func (p *cachedProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cred = model.Credential{}
}

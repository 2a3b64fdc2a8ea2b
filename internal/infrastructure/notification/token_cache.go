// Package notification delivers push messages to residents when their dues
// change state.
package notification

import (
	"context"
	"sync"
	"time"
)

// TokenSource obtains a fresh access token for the push gateway
type TokenSource func(ctx context.Context) (string, error)

// TokenCache caches the push gateway access token for its configured
// lifetime. Instances are injected into the sender that needs them; there is
// no process-wide cache, so two senders with different credentials never
// share a token.
type TokenCache struct {
	source TokenSource
	ttl    time.Duration

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenCache creates a token cache around the given source
func NewTokenCache(source TokenSource, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 50 * time.Minute
	}
	return &TokenCache{
		source: source,
		ttl:    ttl,
	}
}

// Get returns the cached token, refreshing it when expired
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt) {
		return c.token, nil
	}

	token, err := c.source(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiresAt = time.Now().Add(c.ttl)
	return token, nil
}

// Invalidate drops the cached token so the next Get fetches a fresh one.
// Called when the gateway rejects a token before its expected expiry.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

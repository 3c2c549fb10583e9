package admission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/feedgate/feedgate/internal/store"
	"github.com/feedgate/feedgate/pkg/models"
	"github.com/google/uuid"
)

// KeyStore is the slice of the data layer the authenticator needs.
type KeyStore interface {
	GetKeyIdentityByDigest(ctx context.Context, digest string) (*models.KeyIdentity, error)
	UpdateAPIKeyLastUsed(ctx context.Context, keyID uuid.UUID) error
}

// Authenticator resolves bearer credentials to key identities and
// enforces the per-key domain allow-list.
type Authenticator struct {
	store KeyStore
	cache *IdentityCache
}

// NewAuthenticator creates an Authenticator. The identity cache is
// optional; pass nil to look up the store on every request.
func NewAuthenticator(s KeyStore, cache *IdentityCache) *Authenticator {
	return &Authenticator{store: s, cache: cache}
}

// Authenticate validates the Authorization and Origin headers and
// resolves the caller's identity. Format checks run before any store
// I/O. On success the key's last-used timestamp is updated in the
// background; that write never blocks or fails the request.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader, origin string) (*models.KeyIdentity, *Error) {
	rawKey := bearerToken(authHeader)
	if rawKey == "" || !validKeyFormat(rawKey) {
		return nil, errInvalidAPIKey()
	}

	digest := Digest(rawKey)

	identity, cached := a.cache.Get(digest)
	if !cached {
		var err error
		identity, err = a.store.GetKeyIdentityByDigest(ctx, digest)
		if errors.Is(err, store.ErrNotFound) {
			return nil, errInvalidAPIKey()
		}
		if err != nil {
			return nil, errInternal("Failed to validate API key")
		}
		a.cache.Set(digest, identity)
	}

	if !IsDomainAllowed(origin, identity.AllowedDomains) {
		return nil, errOriginNotAllowed()
	}

	// Best-effort side effect; errors are swallowed.
	go a.store.UpdateAPIKeyLastUsed(context.Background(), identity.KeyID)

	return identity, nil
}

func bearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IdentityCache memoizes positive digest lookups with a bounded TTL. It
// is owned by the composition root and injected, so a redeploy or key
// rotation is at most one TTL away from taking effect everywhere.
type IdentityCache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]cachedIdentity
}

type cachedIdentity struct {
	identity  *models.KeyIdentity
	expiresAt time.Time
}

const defaultCacheEntries = 1024

// NewIdentityCache creates a cache holding at most maxEntries identities
// for ttl each. maxEntries <= 0 selects a default.
func NewIdentityCache(ttl time.Duration, maxEntries int) *IdentityCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &IdentityCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]cachedIdentity),
	}
}

func (c *IdentityCache) Get(digest string) (*models.KeyIdentity, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[digest]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, digest)
		return nil, false
	}
	return entry.identity, true
}

func (c *IdentityCache) Set(digest string, identity *models.KeyIdentity) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[digest] = cachedIdentity{identity: identity, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops a digest, e.g. after the key is revoked.
func (c *IdentityCache) Invalidate(digest string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, digest)
}

// evictLocked drops expired entries, then arbitrary ones until under cap.
func (c *IdentityCache) evictLocked() {
	now := time.Now()
	for digest, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, digest)
		}
	}
	for digest := range c.entries {
		if len(c.entries) < c.maxEntries {
			break
		}
		delete(c.entries, digest)
	}
}

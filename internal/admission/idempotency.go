package admission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/feedgate/feedgate/internal/cache"
	"github.com/google/uuid"
)

const (
	idempotencyKeyMinLen = 10
	idempotencyKeyMaxLen = 256

	// IdempotencyTTL bounds how long a cached response is replayable.
	IdempotencyTTL = 5 * time.Minute
)

// StoredResponse is the serialized form of a completed write, replayed
// verbatim when the same idempotency key is seen again.
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// ValidateIdempotencyKey enforces the 10–256 character envelope.
func ValidateIdempotencyKey(key string) bool {
	return len(key) >= idempotencyKeyMinLen && len(key) <= idempotencyKeyMaxLen
}

// Guard deduplicates retried writes through the shared cache. Dedup is
// best effort: a concurrent first use resolves last-writer-wins.
type Guard struct {
	cache cache.Cache
}

func NewGuard(c cache.Cache) *Guard {
	return &Guard{cache: c}
}

// Lookup returns the cached response for an owner's key, if one exists.
// A hit means the underlying write must not be re-executed. Entries are
// scoped to the owning organization: the same key value presented by two
// tenants names two independent slots.
func (g *Guard) Lookup(ctx context.Context, owner uuid.UUID, key string) (*StoredResponse, bool, error) {
	raw, found, err := g.cache.Get(ctx, cache.IdempotencyKey(owner.String(), key))
	if err != nil {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var stored StoredResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		// A corrupt entry is treated as a miss; the write re-executes.
		return nil, false, nil
	}
	return &stored, true, nil
}

// Store caches a completed response under the owner's key for
// IdempotencyTTL.
func (g *Guard) Store(ctx context.Context, owner uuid.UUID, key string, status int, body []byte) error {
	raw, err := json.Marshal(StoredResponse{Status: status, Body: body})
	if err != nil {
		return fmt.Errorf("idempotency serialize: %w", err)
	}
	if err := g.cache.Set(ctx, cache.IdempotencyKey(owner.String(), key), raw, IdempotencyTTL); err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	return nil
}

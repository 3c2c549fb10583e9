package admission

import (
	"context"
	"log/slog"
	"time"

	"github.com/feedgate/feedgate/internal/cache"
)

// Window is the trailing interval the rate limiter counts hits in.
const Window = 60 * time.Second

// Decision is the outcome of a rate-limit check, with the fields needed
// for client-facing X-RateLimit-* headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter bounds request throughput per identifier using a sliding
// window in the shared counter store. The store's ZSET pipeline provides
// the atomicity; the limiter adds no locking of its own.
type Limiter struct {
	cache cache.Cache
}

func NewLimiter(c cache.Cache) *Limiter {
	return &Limiter{cache: c}
}

// Allow records a hit for the identifier and decides admission against
// the plan's per-minute ceiling. On a store error the limiter fails
// open: admitting a burst is preferable to rejecting all traffic while
// the counter store is down.
func (l *Limiter) Allow(ctx context.Context, identifier string, plan Plan) Decision {
	ceiling := RateCeiling(plan)
	now := time.Now()

	count, err := l.cache.CountSlidingWindow(ctx, cache.RateLimitKey(identifier), Window)
	if err != nil {
		slog.Warn("rate limit store unavailable, failing open", "identifier", identifier, "error", err)
		return Decision{Allowed: true, Limit: ceiling, Remaining: ceiling, ResetAt: now.Add(Window)}
	}

	remaining := ceiling - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(ceiling),
		Limit:     ceiling,
		Remaining: remaining,
		ResetAt:   now.Add(Window),
	}
}

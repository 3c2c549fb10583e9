package middleware

import (
	"net/http"
	"strconv"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
)

// RateLimit applies per-key sliding-window rate limiting.
type RateLimit struct {
	limiter *admission.Limiter
	scope   string
}

// NewRateLimit creates rate-limit middleware for a route scope. The
// scope keeps windows for different endpoint groups independent.
func NewRateLimit(l *admission.Limiter, scope string) *RateLimit {
	return &RateLimit{limiter: l, scope: scope}
}

// Limit checks the caller's plan ceiling and sets the standard
// X-RateLimit-* headers on every response.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r)
		if !ok {
			// Auth middleware didn't run; nothing to limit on.
			next.ServeHTTP(w, r)
			return
		}

		// KeyID, not the display prefix: prefixes are truncated and can
		// collide across unrelated keys.
		identifier := rl.scope + ":" + identity.KeyID.String()
		decision := rl.limiter.Allow(r.Context(), identifier, admission.Plan(identity.Plan))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			w.Header().Set("Retry-After", "60")
			response.Error(w, http.StatusTooManyRequests,
				admission.CodeRateLimited, "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

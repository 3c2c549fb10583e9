package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
	"github.com/feedgate/feedgate/internal/cache"
)

// FixedLimit is a coarse fixed-window limiter for surfaces with no
// resolved key identity, such as the admin endpoints. Requests are
// bucketed by client address; the counter resets when the window key
// expires.
type FixedLimit struct {
	cache  cache.Cache
	scope  string
	limit  int
	window time.Duration
}

// NewFixedLimit creates fixed-window middleware allowing limit requests
// per window for each client address within a scope.
func NewFixedLimit(c cache.Cache, scope string, limit int, window time.Duration) *FixedLimit {
	return &FixedLimit{cache: c, scope: scope, limit: limit, window: window}
}

// Limit counts the request against its window and rejects with 429 once
// the ceiling is passed. Fails open on a counter-store error.
func (fl *FixedLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		key := cache.RateLimitKey(fl.scope + ":" + host)
		count, err := fl.cache.IncrWithExpiry(r.Context(), key, fl.window)
		if err != nil {
			slog.Warn("fixed-window counter unavailable, failing open", "scope", fl.scope, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(fl.limit) {
			w.Header().Set("Retry-After", strconv.Itoa(int(fl.window/time.Second)))
			response.Error(w, http.StatusTooManyRequests,
				admission.CodeRateLimited, "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

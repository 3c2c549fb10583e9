package middleware

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
)

// idempotencyHeader is the client-supplied deduplication key.
const idempotencyHeader = "Idempotency-Key"

// Idempotency deduplicates retried writes. A replayed request returns
// the cached response verbatim without re-executing the handler.
type Idempotency struct {
	guard *admission.Guard
}

// NewIdempotency creates a new Idempotency middleware.
func NewIdempotency(g *admission.Guard) *Idempotency {
	return &Idempotency{guard: g}
}

// Require rejects requests without a valid Idempotency-Key, replays
// cached responses, and captures successful ones for later replay.
// Cached entries are scoped to the caller's organization so one tenant
// can never replay another's response.
func (i *Idempotency) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyHeader)
		if !admission.ValidateIdempotencyKey(key) {
			response.Error(w, http.StatusBadRequest, admission.CodeInvalidRequest,
				"Idempotency-Key header must be 10-256 characters", nil)
			return
		}

		identity, ok := GetIdentity(r)
		if !ok {
			// No resolved tenant to scope dedup to; run the write as-is.
			next.ServeHTTP(w, r)
			return
		}
		owner := identity.OrganizationID

		stored, found, err := i.guard.Lookup(r.Context(), owner, key)
		if err != nil {
			// Cache down: dedup is best effort, let the write proceed.
			slog.Warn("idempotency lookup failed", "error", err)
		}
		if found {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotent-Replay", "true")
			w.WriteHeader(stored.Status)
			w.Write(stored.Body)
			return
		}

		rec := &captureRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Only completed writes are replayable; a failure may be retried.
		if rec.status >= 200 && rec.status < 300 {
			if err := i.guard.Store(r.Context(), owner, key, rec.status, rec.body.Bytes()); err != nil {
				slog.Warn("idempotency store failed", "error", err)
			}
		}
	})
}

// captureRecorder tees the response body so it can be cached for replay.
type captureRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *captureRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *captureRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

package api

import (
	"net/http"

	mw "github.com/feedgate/feedgate/internal/api/middleware"
	"github.com/feedgate/feedgate/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth        *mw.Auth
	IngestLimit *mw.RateLimit
	ReadLimit   *mw.RateLimit
	AdminLimit  *mw.FixedLimit
	Idempotency *mw.Idempotency

	// PublicHost is the dashboard host for same-origin checks.
	PublicHost string
	// AdminTokenHash guards the key-management surface.
	AdminTokenHash string

	HealthHandler    http.HandlerFunc
	SubmitResponse   http.HandlerFunc
	ListResponses    http.HandlerFunc
	UsageHandler     http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// SDK ingest: loose origin policy is enforced per key inside auth.
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.IngestLimit.Limit)
		r.Use(deps.Idempotency.Require)

		r.Post("/api/v1/responses", orNotImplemented(deps.SubmitResponse))
	})

	// Dashboard reads: strict same-origin on top of key auth.
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(mw.RequireSameOrigin(deps.PublicHost))
		r.Use(deps.ReadLimit.Limit)

		r.Get("/api/v1/responses", orNotImplemented(deps.ListResponses))
		r.Get("/api/v1/usage", orNotImplemented(deps.UsageHandler))
	})

	// Admin key management
	r.Group(func(r chi.Router) {
		r.Use(deps.AdminLimit.Limit)
		r.Use(mw.RequireAdmin(deps.AdminTokenHash))

		r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
		r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
		r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}

package middleware

import (
	"net/http"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
)

// Auth authenticates API requests through the admission layer.
type Auth struct {
	authenticator *admission.Authenticator
}

// NewAuth creates a new Auth middleware.
func NewAuth(a *admission.Authenticator) *Auth {
	return &Auth{authenticator: a}
}

// Authenticate validates the Bearer credential and the request origin
// against the key's domain allow-list, then stores the resolved identity
// in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, admErr := a.authenticator.Authenticate(
			r.Context(),
			r.Header.Get("Authorization"),
			r.Header.Get("Origin"),
		)
		if admErr != nil {
			response.Error(w, admErr.Status, admErr.Code, admErr.Message, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), identity)))
	})
}

package middleware

import (
	"net/http"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
)

// RequireSameOrigin guards internal endpoints with the strict origin
// policy: both the Origin header and the request Host must be present
// and resolve to the configured public host. Missing headers are a
// denial, not an allowance.
func RequireSameOrigin(publicHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Host == "" || !admission.IsSameSiteOrigin(r.Header.Get("Origin"), publicHost) {
				response.Error(w, http.StatusForbidden, admission.CodeForbidden,
					"Request must originate from the dashboard", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

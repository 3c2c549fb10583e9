package middleware

import (
	"net/http"
	"strings"

	"github.com/feedgate/feedgate/internal/admission"
	"github.com/feedgate/feedgate/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// RequireAdmin guards key-management endpoints. The caller presents the
// plaintext admin token in X-Admin-Token; only its bcrypt hash is held
// in config.
func RequireAdmin(adminTokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
			if token == "" ||
				bcrypt.CompareHashAndPassword([]byte(adminTokenHash), []byte(token)) != nil {
				response.Error(w, http.StatusForbidden, admission.CodeForbidden,
					"Admin token required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

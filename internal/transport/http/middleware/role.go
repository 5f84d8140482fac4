package middleware

import (
	"net/http"
	"slices"
)

// RequireRole lets the request through only when the token role is one of
// roles. Patients calling a doctor route get 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				writeJSONError(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

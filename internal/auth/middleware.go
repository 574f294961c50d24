package auth

import (
	"net/http"
	"strings"

	"tripcore/internal/store"
)

// JWTAuth extracts and validates the Bearer token, placing its claims on
// the request context. Any validation failure is a plain 401.
func JWTAuth(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := issuer.Decode(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole gates a route on role membership. Roles are not token claims,
// so membership is resolved against the store on every request.
func RequireRole(st store.CredentialStore, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := Subject(r.Context())
			if uid == "" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			names, err := st.RoleNamesForUser(r.Context(), uid)
			if err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			for _, n := range names {
				if n == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

package auth

import (
	"net/http"

	"github.com/rinori/backoffice/internal/platform/httpx"
	"github.com/rinori/backoffice/internal/shared"
)

// RequireAuth rejects requests that carry no authenticated session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.CurrentUserID(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "unauthorized", "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMaster rejects requests from users without the master role.
func RequireMaster(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.CurrentUserID(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "unauthorized", "login required")
			return
		}
		if shared.CurrentRole(r.Context()) != RoleMaster {
			httpx.Problem(w, http.StatusForbidden, "forbidden", "master role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

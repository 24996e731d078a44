// Package rbac provides role-based route guards. It only looks at the role
// carried by the caller's identity; ownership checks live in app/policies.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/marmita/pkg/middleware"
	"github.com/shashiranjanraj/marmita/pkg/response"
)

// HasRole allows only callers whose role is one of roles. Everyone else is
// handed to deny; nil deny answers with a 403 envelope.
// Requires middleware.Authenticate to have run.
func HasRole(deny http.HandlerFunc, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request) { response.Forbidden(w) }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DenyRole is the inverse of HasRole: callers holding one of roles are
// handed to deny, everyone else (anonymous included) passes.
func DenyRole(deny http.HandlerFunc, roles ...string) func(http.Handler) http.Handler {
	blocked := make(map[string]bool, len(roles))
	for _, r := range roles {
		blocked[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role, ok := middleware.RoleFromCtx(r); ok && blocked[role] {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest blocks authenticated callers (login/registration pages) by handing
// them to redirect.
func Guest(redirect http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := middleware.UserIDFromCtx(r); ok {
				redirect(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

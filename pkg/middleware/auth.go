package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/marmita/pkg/auth"
	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/session"
)

// Session keys written at login and read by Authenticate.
const (
	SessionUserID = "user_id"
	SessionRole   = "role"
)

// Identity is the authenticated caller. Role is the profile role and is empty
// for accounts without a profile.
type Identity struct {
	UserID uint
	Role   string
}

type identityKey struct{}

// WithIdentity stores id in ctx. Tests use it to fake a logged-in caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromCtx returns the caller, if one was resolved.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != 0
}

func UserIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := IdentityFromCtx(r.Context())
	return id.UserID, ok
}

func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := IdentityFromCtx(r.Context())
	return id.Role, ok && id.Role != ""
}

// Authenticate resolves the caller from the session, falling back to an
// "Authorization: Bearer <jwt>" header. It never rejects: anonymous requests
// pass through without an identity. Install it after session.Middleware.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id Identity

		sess := session.FromCtx(r)
		if uid, ok := sess.GetUint(SessionUserID); ok && uid != 0 {
			role, _ := sess.GetString(SessionRole)
			id = Identity{UserID: uid, Role: role}
		} else if token := bearerToken(r); token != "" {
			claims, err := auth.ValidateToken(token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("auth: rejected bearer token", "error", err)
			} else {
				id = Identity{UserID: claims.UserID, Role: claims.Role}
			}
		}

		if id.UserID != 0 {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth lets authenticated callers through and hands everyone else to
// deny (a redirect to the login page on the web, a 401 on the API).
func RequireAuth(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromCtx(r.Context()); !ok {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

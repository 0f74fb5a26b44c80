package middleware

import (
	"net/http"

	"backoffice/internal/auth"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/requestctx"
	"backoffice/internal/transport/http/api"
)

// RequireRole admits authenticated callers whose role is listed. Admin is
// always admitted.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]bool{auth.RoleAdmin: true}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := requestctx.GetActor(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", GetRequestID(r.Context()))
				return
			}
			if !allowed[actor.Role] {
				api.Fail(w, http.StatusForbidden, apperror.CodeForbidden, "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth admits any authenticated caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requestctx.GetActor(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

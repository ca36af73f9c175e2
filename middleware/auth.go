package middleware

import (
	"net/http"
	"strings"

	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

// AuthMiddleware validates the bearer token and stores the caller identity on
// the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				utils.WriteError(w, http.StatusUnauthorized, "Session expired, please sign in again")
				return
			}
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := utils.WithUser(r.Context(), claims.UserID, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware allows only callers whose token carries the admin role.
// Must run after AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := utils.GetRole(r)
		if !ok || role != "admin" {
			utils.WriteError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rishivikram/vastra/pkg/auth"
	"github.com/rishivikram/vastra/pkg/response"
	"github.com/rishivikram/vastra/pkg/router"
)

// AccountStatus is what the auth middleware needs to know about a user
// beyond the token claims.
type AccountStatus struct {
	Exists  bool
	Blocked bool
	Admin   bool
}

// AccountSource resolves the account status for a user ID. Implemented by
// the user repository; kept as an interface here so middleware stays free
// of storage imports.
type AccountSource interface {
	AccountStatus(ctx context.Context, userID string) (AccountStatus, error)
}

// Authenticate validates the bearer token, loads the account, rejects
// blocked or missing users, and attaches the Identity to the context.
func Authenticate(accounts AccountSource) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || token == r.Header.Get("Authorization") {
				response.Unauthorized(w)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			status, err := accounts.AccountStatus(r.Context(), claims.UserID)
			if err != nil {
				response.FromError(w, err)
				return
			}
			if !status.Exists {
				response.Unauthorized(w)
				return
			}
			if status.Blocked {
				response.Error(w, http.StatusForbidden, "Account is blocked")
				return
			}

			identity := auth.Identity{UserID: claims.UserID, Admin: status.Admin}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin rejects non-admin callers. Mount after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromCtx(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}
		if !identity.Admin {
			response.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

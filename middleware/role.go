package middleware

import (
	"log"
	"net/http"

	"github.com/thecoder877/Vrticko/models"
	"github.com/thecoder877/Vrticko/utils"
)

// UserProvider resolves a user profile by ID. Implemented by
// services.ProfileCache, so role checks see role changes within the
// cache TTL instead of waiting for the token to expire.
type UserProvider interface {
	GetUser(userID string) (*models.User, error)
}

// RequireRole rejects requests whose authenticated user does not hold
// one of the given roles. Must run after AuthMiddleware.
func RequireRole(provider UserProvider, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := provider.GetUser(claims.UserID)
			if err != nil {
				log.Printf("❌ Role check failed for user %s: %v", claims.UserID, err)
				utils.RespondError(w, http.StatusInternalServerError, "Unable to verify permissions")
				return
			}
			if user == nil {
				utils.RespondError(w, http.StatusForbidden, "Account no longer exists")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Printf("⚠️ Access denied: user %s (role %s) tried %s %s", claims.UserID, user.Role, r.Method, r.URL.Path)
			utils.RespondError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

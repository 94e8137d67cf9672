package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jodisatria/photofolio-api/pkg/apperror"
)

// RoleAllowed reports whether role is in the allowed set.
func RoleAllowed(allowed []string, role string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// RestrictTo limits a route to the given roles. It must run after Protect;
// without an authenticated user the request is rejected outright.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			abortWith(c, apperror.ErrNotLoggedIn)
			return
		}
		if !RoleAllowed(roles, u.Role) {
			abortWith(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	"github.com/jodisatria/photofolio-api/pkg/apperror"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
	"github.com/jodisatria/photofolio-api/pkg/token"
)

// Context keys set by Protect on success.
const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// CurrentUser returns the authenticated user attached by Protect, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// abortWith funnels a failure into the error normalizer and stops the chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// tokenFromRequest extracts the candidate token: Authorization bearer header
// first, then the auth cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(helpers.AuthCookieName); err == nil {
		return v
	}
	return ""
}

// Protect is the authentication gate in front of every protected route. The
// check order is fixed: presence, then signature/expiry, then user lookup,
// then password staleness. Only then is the user attached to the context.
func Protect(codec *token.Codec, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" || raw == "logged_out" {
			abortWith(c, apperror.ErrNotLoggedIn)
			return
		}

		claims, err := codec.Verify(raw)
		if err != nil {
			// The normalizer rewrites codec failures into their operational
			// 401 shapes.
			abortWith(c, err)
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWith(c, apperror.ErrUserGone)
				return
			}
			abortWith(c, err)
			return
		}

		if claims.IssuedAt != nil && u.ChangedPasswordAfter(claims.IssuedAt.Time) {
			abortWith(c, apperror.ErrStalePassword)
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

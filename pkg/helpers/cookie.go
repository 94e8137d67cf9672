package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthCookieName is the cookie carrying the identity token.
const AuthCookieName = "jwt"

// CookieManager writes the auth cookie. The cookie lives on its own clock,
// configured separately from the token's validity window; an expired token
// inside a live cookie still fails verification.
type CookieManager struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

func NewCookie(domain string, secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, TTL: ttl}
}

// SetAuth stores the identity token in an httpOnly cookie. Secure is only set
// under a production-style configuration.
func (m *CookieManager) SetAuth(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
}

// ClearAuth overwrites the auth cookie with a short-lived placeholder value so
// subsequent requests no longer carry a verifiable token.
func (m *CookieManager) ClearAuth(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, "logged_out", int((10 * time.Second).Seconds()), "/", m.Domain, m.Secure, true)
}

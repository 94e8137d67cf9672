package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ctxRealIPKey carries the resolved client address for the rate limiters.
const ctxRealIPKey = "real_ip"

// RealIP resolves the client address when the API sits behind a proxy or CDN:
// CF-Connecting-IP first, then the left-most X-Forwarded-For hop, then gin's
// own resolution. Values that do not parse as IPs are ignored rather than
// trusted.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				c.Set(ctxRealIPKey, ip.String())
				c.Next()
				return
			}
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
			if ip := net.ParseIP(first); ip != nil {
				c.Set(ctxRealIPKey, ip.String())
				c.Next()
				return
			}
		}
		c.Set(ctxRealIPKey, c.ClientIP())
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jodisatria/photofolio-api/pkg/apperror"
)

// ipFromCtx prefers the proxy-resolved address set by RealIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(ctxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc derives the counter key for a request. Different routes pick
// different granularities: plain IP for the global limit, IP+path for the
// abuse-prone public endpoints, user id for authenticated traffic.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID falls back to the IP key before the auth gate has run.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + ipFromCtx(c)
	}
}

// incrExpireScript bumps the counter and starts the window atomically, so the
// first request in a window cannot leave an immortal key behind.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// AllowFunc returning true bypasses the limiter for that request.
type AllowFunc func(*gin.Context) bool

// RateLimit counts requests per key in a fixed window backed by Redis. The
// limiter fails open on Redis errors; throttling is protection, not a
// correctness requirement. CORS preflights are never counted.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	msg := fmt.Sprintf("Too many requests from this IP. Try again in %s.", retryHint(window))
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)
		count, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			c.Next()
			return
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > max {
			ttl, _ := rdb.TTL(ctx, key).Result()
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			}
			abortWith(c, apperror.New(msg, http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}

// retryHint words the window for the 429 message.
func retryHint(window time.Duration) string {
	switch {
	case window == time.Hour:
		return "an hour"
	case window > time.Hour && window%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(window/time.Hour))
	case window == time.Minute:
		return "a minute"
	case window > time.Minute && window%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(window/time.Minute))
	default:
		return window.String()
	}
}

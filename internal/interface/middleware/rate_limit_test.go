package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRetryHint(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   string
	}{
		{time.Hour, "an hour"},
		{2 * time.Hour, "2 hours"},
		{time.Minute, "a minute"},
		{5 * time.Minute, "5 minutes"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, retryHint(tt.window))
		})
	}
}

func TestRateLimitPassthroughWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimit(nil, 5, time.Minute, KeyByIP(), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitKeyFuncs(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/users/login", nil)
	c.Set(ctxRealIPKey, "203.0.113.9")

	assert.Equal(t, "rl:ip:203.0.113.9", KeyByIP()(c))
	assert.Equal(t, "rl:path:/api/users/login:ip:203.0.113.9", KeyByIPAndPath()(c))
	assert.Equal(t, "rl:user:anon:ip:203.0.113.9", KeyByUserID()(c))

	c.Set(CtxUserIDKey, "u1")
	assert.Equal(t, "rl:user:u1", KeyByUserID()(c))
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestIDKey is where the per-request id lives in the gin context; the
// error normalizer includes it when logging defects.
const CtxRequestIDKey = "request_id"

// RequestID tags every request with a fresh id and echoes it back in the
// X-Request-ID header so client reports can be matched to server logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(CtxRequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes the standard success envelope: {"status":"success", ...body}.
// Error responses never go through here; they are shaped by the error
// normalizer middleware.
func Success(c *gin.Context, status int, body gin.H) {
	if status == 0 {
		status = http.StatusOK
	}
	out := gin.H{"status": "success"}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// NoContent writes an empty-body success, used by the delete endpoints.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

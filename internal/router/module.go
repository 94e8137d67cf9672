package router

import "github.com/gin-gonic/gin"

// Module is one feature area (users, images, contact) hanging its routes off
// the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/jodisatria/photofolio-api/internal/interface/http"
	"github.com/jodisatria/photofolio-api/internal/interface/middleware"
)

// ContactModule wires the public contact-form relay.
type ContactModule struct {
	Handler *handlers.ContactHandler
	RDB     *redis.Client
}

func NewContactModule(h *handlers.ContactHandler, rdb *redis.Client) *ContactModule {
	return &ContactModule{Handler: h, RDB: rdb}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/contact/sendEmail", limiter, m.Handler.SendEmail)
}

package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	handlers "github.com/jodisatria/photofolio-api/internal/interface/http"
	"github.com/jodisatria/photofolio-api/internal/interface/middleware"
	"github.com/jodisatria/photofolio-api/pkg/token"
)

// ImageModule wires gallery routes. Listing is public; upload and delete
// require authentication.
type ImageModule struct {
	Handler *handlers.ImageHandler
	Codec   *token.Codec
	Users   repository.UserRepository
}

func NewImageModule(h *handlers.ImageHandler, codec *token.Codec, users repository.UserRepository) *ImageModule {
	return &ImageModule{Handler: h, Codec: codec, Users: users}
}

func (m *ImageModule) Register(rg *gin.RouterGroup) {
	images := rg.Group("/images")
	images.GET("", m.Handler.List)

	auth := images.Group("/")
	auth.Use(middleware.Protect(m.Codec, m.Users))
	{
		auth.POST("/upload", m.Handler.Upload)
		auth.DELETE("/delete", m.Handler.Delete)
	}
}

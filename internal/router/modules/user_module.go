package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
	handlers "github.com/jodisatria/photofolio-api/internal/interface/http"
	"github.com/jodisatria/photofolio-api/internal/interface/middleware"
	"github.com/jodisatria/photofolio-api/pkg/token"
)

// UserModule wires account routes.
// Public: signup, login, logout, forgotPassword, resetPassword.
// Protected: me, me/update, updatePassword, me/delete.
// Admin: list, search, :id.
type UserModule struct {
	Handler *handlers.UserHandler
	Codec   *token.Codec
	Users   repository.UserRepository
	RDB     *redis.Client
}

func NewUserModule(h *handlers.UserHandler, codec *token.Codec, users repository.UserRepository, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Codec: codec, Users: users, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	signupLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	forgotLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	users.POST("/signup", signupLimiter, m.Handler.Signup)
	users.POST("/login", loginLimiter, m.Handler.Login)
	users.POST("/logout", m.Handler.Logout)
	users.POST("/forgotPassword", forgotLimiter, m.Handler.ForgotPassword)
	users.PATCH("/resetPassword/:token", m.Handler.ResetPassword)

	auth := users.Group("/")
	auth.Use(middleware.Protect(m.Codec, m.Users))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
		auth.PATCH("/me/update", m.Handler.UpdateMe)
		auth.PATCH("/updatePassword", m.Handler.UpdatePassword)
		auth.DELETE("/me/delete", m.Handler.DeleteMe)
	}

	admin := auth.Group("/")
	admin.Use(middleware.RestrictTo(entity.RoleAdmin))
	{
		admin.GET("/list", m.Handler.List)
		admin.GET("/search", m.Handler.Search)
		admin.GET("/:id", m.Handler.GetOne)
	}
}

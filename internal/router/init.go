package router

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jodisatria/photofolio-api/config"
	"github.com/jodisatria/photofolio-api/internal/application"
	pginfra "github.com/jodisatria/photofolio-api/internal/infrastructure/postgres"
	handlers "github.com/jodisatria/photofolio-api/internal/interface/http"
	"github.com/jodisatria/photofolio-api/internal/router/modules"
	"github.com/jodisatria/photofolio-api/pkg/helpers"
	"github.com/jodisatria/photofolio-api/pkg/token"
)

// Deps carries the infrastructure singletons constructed in main.
type Deps struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	RDB    *redis.Client
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Codec  *token.Codec
	Pub    application.Enqueuer
}

// InitModules builds each feature module from the shared infrastructure and
// registers it with the router registry. Called once during startup.
func InitModules(r *Registry, d Deps) {
	userRepo := pginfra.NewUserRepository(d.Pool)
	imageRepo := pginfra.NewImageRepository(d.Pool)

	cookies := helpers.NewCookie(d.Cfg.CookieDomain, d.Cfg.CookieSecure || d.Cfg.IsProduction(), d.Cfg.CookieTTL)

	userSvc := application.NewUserService(userRepo, d.Pub, d.Logger, d.Cfg, d.ES)
	imageSvc := application.NewImageService(imageRepo, d.GCS, d.Cfg.GCSBucket, d.Logger)

	userHandler := handlers.NewUserHandler(userSvc, d.Codec, d.Logger, cookies)
	imageHandler := handlers.NewImageHandler(imageSvc, d.Logger)
	contactHandler := handlers.NewContactHandler(d.Pub, d.Logger, d.Cfg)

	r.Add(modules.NewUserModule(userHandler, d.Codec, userRepo, d.RDB))
	r.Add(modules.NewImageModule(imageHandler, d.Codec, userRepo))
	r.Add(modules.NewContactModule(contactHandler, d.RDB))
}

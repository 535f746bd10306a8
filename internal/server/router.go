package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AD-em/orphan-database/internal/auth"
	"github.com/AD-em/orphan-database/internal/config"
	"github.com/AD-em/orphan-database/internal/logger"
	"github.com/AD-em/orphan-database/internal/metrics"
	"github.com/AD-em/orphan-database/internal/session"
	"github.com/AD-em/orphan-database/internal/upload"
)

// Dependencies groups the services required by the HTTP router. Backends that
// a given deployment does not use stay nil and their routes and readiness
// checks are skipped.
type Dependencies struct {
	Config        config.Config
	Logger        *zap.Logger
	DB            *pgxpool.Pool
	Redis         *redis.Client
	ObjectStore   *minio.Client
	Codec         session.CookieCodec
	Authenticator *session.Authenticator
	AuthService   *auth.Service
	UploadService *upload.Service
	UploadDirs    *upload.DiskStore
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	if deps.Logger != nil {
		router.Use(logger.RequestLogger(deps.Logger))
	}
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.Config.CORS)))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService, deps.Codec, deps.Authenticator)
	}
	if deps.UploadService != nil {
		upload.RegisterRoutes(api, deps.UploadService, upload.Options{
			MaxUploadSize:    deps.Config.Upload.MaxSize,
			SilentAuthDenial: deps.Config.Upload.SilentAuthDenial,
		})
	}

	registerFileRoutes(router, deps)

	return router
}

// corsConfig allows the configured origins to send credentialed requests, so
// browsers attach the session cookie to uploads.
func corsConfig(cfg config.CORSConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, logger.CorrelationIDHeader)
	return corsCfg
}

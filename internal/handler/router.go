package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/middleware"
	"github.com/noah-isme/student-records-api/internal/repository"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/config"
	"github.com/noah-isme/student-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/requestid"
)

// RouterDeps collects everything the HTTP layer is wired from.
type RouterDeps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *service.MetricsService
	Students  *StudentHandler
	Exports   *ExportHandler
	Health    *MetricsHandler
	RateLimit *repository.RateLimitRepository
}

// NewRouter builds the gin engine with the full middleware chain and routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.BodyLimit(cfg.BodyLimitBytes))

	r.GET("/health", deps.Health.Health)
	r.GET("/ready", deps.Health.Ready)
	r.GET("/metrics", deps.Health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", deps.Health.APIHealth)

	students := api.Group("/students")
	if cfg.RateLimit.Enabled {
		students.Use(middleware.RateLimit(deps.RateLimit, middleware.RateLimitOptions{
			Requests:   cfg.RateLimit.Requests,
			Window:     cfg.RateLimit.Window,
			Rejections: deps.Metrics,
			Logger:     deps.Logger,
		}))
	}
	students.GET("", deps.Students.List)
	students.POST("", deps.Students.Create)
	students.GET("/export", deps.Exports.Roster)
	students.GET("/:id", deps.Students.Get)
	students.PUT("/:id", deps.Students.Update)
	students.DELETE("/:id", deps.Students.Delete)

	r.NoRoute(middleware.NotFound())
	return r
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/laptopfinder/backend/config"
	"github.com/laptopfinder/backend/internal/observability"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

// RouterDeps are the collaborators the router needs besides the handler.
// Metrics and Gatherer may be nil, which disables /metrics.
type RouterDeps struct {
	Logger   *logger.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, deps RouterDeps) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(deps.Logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	// after logging and metrics so recovered panics are still recorded as 500s
	router.Use(RecoveryMiddleware(deps.Logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.POST("/chatbot", handler.Chat)
		v1.GET("/laptops", handler.ListLaptops)

		finder := v1.Group("/laptop-finder")
		{
			finder.POST("", handler.FindPOST)
			finder.GET("", handler.FindGET)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

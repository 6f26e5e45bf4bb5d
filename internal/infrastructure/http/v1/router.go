// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"campos/internal/infrastructure/http/v1/handlers"
	"campos/internal/infrastructure/http/v1/middleware"
	"campos/pkg/logger"
)

// PermReadProfitability guards the profitability report endpoints.
const PermReadProfitability = "report:profitability:read"

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// DB backs the readiness and info probes
	DB handlers.DatabaseProbe

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Profitability generates profitability reports
	Profitability handlers.ProfitabilityGenerator

	// Development enables gin debug mode
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order matters: Recovery records panics as errors that ErrorHandler renders.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerReportRoutes(protected, cfg)
	}

	return router
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	reportHandler := handlers.NewReportsHandler(handlers.NewBaseHandler(), cfg.Profitability)

	canRead := middleware.RequirePermission(PermReadProfitability)
	reportsGroup.GET("/profitability", canRead, reportHandler.GetProfitability)
	reportsGroup.GET("/profitability/export", canRead, reportHandler.ExportProfitability)
}

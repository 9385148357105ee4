package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "sva/internal/docs" // registers the OpenAPI description
	"sva/internal/handler"
	"sva/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	extractionH *handler.ExtractionHandler,
	parseH *handler.ParseReportHandler,
	orderH *handler.OrderHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stateless extraction contract shared with edge deployments
	r.POST("/functions/parse-report", parseH.Parse)

	v1 := r.Group("/api/v1")

	extractions := v1.Group("/extractions")
	extractions.POST("", extractionH.Upload)
	extractions.GET("", extractionH.List)
	extractions.GET("/:id", extractionH.GetByID)
	extractions.POST("/:id/confirm", extractionH.Confirm)
	extractions.POST("/:id/decline", extractionH.Decline)
	extractions.GET("/:id/export", extractionH.Export)
	extractions.GET("/:id/original", extractionH.Original)

	orders := v1.Group("/orders")
	orders.GET("", orderH.List)
	orders.GET("/:id", orderH.GetByID)
	orders.POST("/:id/status", orderH.UpdateStatus)
	orders.POST("/:id/receive", orderH.Receive)

	return r
}

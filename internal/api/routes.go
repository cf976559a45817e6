package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/snapshots", handler.SubmitSnapshot) // POST /api/v1/snapshots
		v1.POST("/clicks", handler.SubmitClick)       // POST /api/v1/clicks
		v1.POST("/analyze", handler.Analyze)          // POST /api/v1/analyze
		v1.GET("/status", handler.Status)             // GET  /api/v1/status
		v1.GET("/stats", handler.Stats)               // GET  /api/v1/stats
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, health HealthOptions, metrics http.Handler) {
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadyCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		verify := v1.Group("/verify")
		{
			verify.POST("", handler.Verify)            // POST /api/v1/verify
			verify.POST("/batch", handler.VerifyBatch) // POST /api/v1/verify/batch
		}

		v1.POST("/classify", handler.Classify)   // POST /api/v1/classify
		v1.POST("/escalation", handler.Escalate) // POST /api/v1/escalation

		reporters := v1.Group("/reporters")
		{
			reporters.GET("/:id/credibility", handler.GetCredibility) // GET /api/v1/reporters/:id/credibility
		}
	}
}

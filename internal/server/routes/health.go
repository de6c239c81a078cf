package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/handlers"
)

// SetupHealthRoutes configures liveness endpoints
func SetupHealthRoutes(router *gin.Engine, health *handlers.HealthHandler) {
	router.GET("/", health.Root)
	router.HEAD("/", health.Root)
	router.GET("/health", health.Check)
}

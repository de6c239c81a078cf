package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/handlers"
)

// SetupFormRoutes configures form discovery endpoints
func SetupFormRoutes(router *gin.Engine, forms *handlers.FormsHandler) {
	router.GET("/forms", forms.List)
	router.GET("/forms/:id", forms.Get)
}

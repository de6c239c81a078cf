package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/handlers"
)

// SetupSubmitRoutes configures submission endpoints
func SetupSubmitRoutes(router *gin.Engine, submit *handlers.SubmitHandler, m *Middleware) {
	validate := m.Validation.ValidateSubmitRequest()

	router.POST("/submit", validate, submit.Submit)
	router.POST("/submit/:form_id", validate, submit.Submit)
}

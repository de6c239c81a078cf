package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/h190k/formrelay/internal/api/dto/common"
	"github.com/h190k/formrelay/internal/api/middleware"
	"github.com/h190k/formrelay/internal/logging"
)

// GlobalOptions configures middleware applied to every request
type GlobalOptions struct {
	ServiceName  string
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Setup configures all routes
func Setup(router *gin.Engine, h *Handlers, m *Middleware) {
	SetupHealthRoutes(router, h.Health)
	SetupFormRoutes(router, h.Forms)
	SetupSubmitRoutes(router, h.Submit, m)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse(common.ErrCodeNotFound, "Not found", nil))
	})
}

// SetupGlobalMiddleware configures middleware that applies to all routes,
// unmatched ones included
func SetupGlobalMiddleware(router *gin.Engine, logger *logging.Logger, opts GlobalOptions) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger.Logger))
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodyLimit(opts.MaxBodyBytes))
}

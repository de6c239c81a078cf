package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/constants"
	"github.com/h190k/formrelay/internal/logging"
)

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.LogHTTPRequest(
			method,
			path,
			c.ClientIP(),
			c.GetString(constants.ContextKeyRequestID),
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start),
		)
	}
}

package utils

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/constants"
	"github.com/h190k/formrelay/internal/api/dto/common"
)

// HandleAPIError logs err with request context and aborts with a standard
// error envelope. err itself never reaches the client: only message and, for
// client errors, details do.
func HandleAPIError(c *gin.Context, logger *slog.Logger, err error, status int, code common.ErrorCode, message string, details interface{}) {
	if logger != nil {
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", c.GetString(constants.ContextKeyRequestID)),
			slog.Int("status", status),
			slog.String("code", string(code)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		if status >= 500 {
			logger.Error(message, attrs...)
		} else {
			logger.Debug(message, attrs...)
		}
	}

	if status >= 500 {
		details = nil
	}

	c.AbortWithStatusJSON(status, common.NewErrorResponse(code, message, details))
}

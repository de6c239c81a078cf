package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/constants"
	"github.com/h190k/formrelay/internal/api/dto/common"
	"github.com/h190k/formrelay/internal/api/dto/v1/submit"
	"github.com/h190k/formrelay/internal/api/validation"
	"github.com/h190k/formrelay/internal/utils"
)

// ValidationMiddleware binds and checks request bodies before handlers run
type ValidationMiddleware struct {
	logger *slog.Logger
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{logger: logger}
}

// ValidateSubmitRequest binds a submission body. The form id comes from the
// form_id path parameter when present, otherwise from the body.
func (m *ValidationMiddleware) ValidateSubmitRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submit.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.HandleAPIError(c, m.logger, err, http.StatusRequestEntityTooLarge,
					common.ErrCodePayloadTooLarge, "Request body too large", nil)
				return
			}
			utils.HandleAPIError(c, m.logger, err, http.StatusBadRequest,
				common.ErrCodeValidation, "Invalid request body", validation.FormatValidationError(err))
			return
		}

		if !req.Data.Defined() {
			utils.HandleAPIError(c, m.logger, nil, http.StatusBadRequest,
				common.ErrCodeValidation, "Invalid request body",
				[]validation.ValidationError{{Field: "data", Tag: "required"}})
			return
		}

		if formID := strings.TrimSpace(c.Param("form_id")); formID != "" {
			req.FormID = formID
		}
		if req.FormID == "" {
			utils.HandleAPIError(c, m.logger, nil, http.StatusBadRequest,
				common.ErrCodeValidation, "Invalid request body",
				[]validation.ValidationError{{Field: "form_id", Tag: "required"}})
			return
		}

		c.Set(constants.ContextKeySubmit, &req)
		c.Next()
	}
}

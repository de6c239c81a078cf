package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/constants"
	"github.com/h190k/formrelay/internal/api/dto/common"
	"github.com/h190k/formrelay/internal/api/dto/v1/submit"
	"github.com/h190k/formrelay/internal/pipeline"
	"github.com/h190k/formrelay/internal/utils"
)

// Submitter runs a submission through the pipeline
type Submitter interface {
	Submit(ctx context.Context, sub pipeline.Submission) (*pipeline.Result, error)
}

type SubmitHandler struct {
	pipeline Submitter
	logger   *slog.Logger
}

func NewSubmitHandler(p Submitter, logger *slog.Logger) *SubmitHandler {
	return &SubmitHandler{pipeline: p, logger: logger}
}

// Submit handles POST /submit and POST /submit/:form_id
func (h *SubmitHandler) Submit(c *gin.Context) {
	// Get submission from context (set by validation middleware)
	value, exists := c.Get(constants.ContextKeySubmit)
	if !exists {
		utils.HandleAPIError(c, h.logger, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Submission not found in context", nil)
		return
	}

	req, ok := value.(*submit.SubmitRequest)
	if !ok {
		utils.HandleAPIError(c, h.logger, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Invalid submission format", nil)
		return
	}

	_, err := h.pipeline.Submit(c.Request.Context(), pipeline.Submission{
		FormID:       req.FormID,
		Data:         req.Data,
		CaptchaToken: req.CaptchaToken,
		Origin:       req.Origin,
		HeaderOrigin: c.GetHeader("Origin"),
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		status, code, message := submitError(err)
		utils.HandleAPIError(c, h.logger, err, status, code, message, nil)
		return
	}

	utils.HandleMessage(c, "Form submitted successfully")
}

// submitError maps a pipeline failure to its HTTP status, code and public
// message.
func submitError(err error) (int, common.ErrorCode, string) {
	var perr *pipeline.Error
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError, common.ErrCodeSubmissionFailed, "Submission failed"
	}

	switch perr.Kind {
	case pipeline.ErrOriginForbidden:
		return http.StatusForbidden, common.ErrCodeOriginForbidden, perr.Message()
	case pipeline.ErrCaptchaFailed:
		return http.StatusForbidden, common.ErrCodeCaptchaFailed, perr.Message()
	case pipeline.ErrCaptchaRequired:
		return http.StatusBadRequest, common.ErrCodeCaptchaRequired, perr.Message()
	case pipeline.ErrMissingField:
		return http.StatusBadRequest, common.ErrCodeMissingField, perr.Message()
	case pipeline.ErrFormNotFound:
		return http.StatusNotFound, common.ErrCodeFormNotFound, perr.Message()
	default:
		return http.StatusInternalServerError, common.ErrCodeSubmissionFailed, perr.Message()
	}
}

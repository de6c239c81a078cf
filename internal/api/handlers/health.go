package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/dto/common"
	"github.com/h190k/formrelay/internal/version"
)

// ServiceName is reported by the liveness endpoints
const ServiceName = "Dynamic Form API"

type HealthHandler struct {
	captcha string
}

// NewHealthHandler creates a health handler; captcha names the active
// provider, empty when disabled.
func NewHealthHandler(captcha string) *HealthHandler {
	return &HealthHandler{captcha: captcha}
}

// Root answers GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, common.StatusResponse{Status: "ok", Service: ServiceName})
}

// Check answers GET /health with build details
func (h *HealthHandler) Check(c *gin.Context) {
	captcha := h.captcha
	if captcha == "" {
		captcha = "disabled"
	}

	c.JSON(http.StatusOK, common.StatusResponse{
		Status:  "ok",
		Service: ServiceName,
		Version: version.Version,
		Captcha: captcha,
	})
}

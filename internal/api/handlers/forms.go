package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/h190k/formrelay/internal/api/dto/common"
	formsdto "github.com/h190k/formrelay/internal/api/dto/v1/forms"
	"github.com/h190k/formrelay/internal/forms"
	"github.com/h190k/formrelay/internal/utils"
)

// FormLister exposes the registered forms
type FormLister interface {
	List() []forms.Summary
	Lookup(id string) (forms.Definition, bool)
}

type FormsHandler struct {
	forms  FormLister
	logger *slog.Logger
}

func NewFormsHandler(forms FormLister, logger *slog.Logger) *FormsHandler {
	return &FormsHandler{forms: forms, logger: logger}
}

// List returns every form keyed by id
func (h *FormsHandler) List(c *gin.Context) {
	summaries := h.forms.List()

	out := make(map[string]formsdto.FormSummary, len(summaries))
	for _, s := range summaries {
		out[s.ID] = formsdto.FormSummary{Name: s.DisplayName, Fields: s.Fields}
	}

	c.JSON(http.StatusOK, out)
}

// Get returns one form
func (h *FormsHandler) Get(c *gin.Context) {
	def, ok := h.forms.Lookup(c.Param("id"))
	if !ok {
		utils.HandleAPIError(c, h.logger, nil, http.StatusNotFound, common.ErrCodeFormNotFound, "Form not found", nil)
		return
	}

	c.JSON(http.StatusOK, formsdto.FormResponse{
		ID:     def.ID,
		Name:   def.DisplayName,
		Fields: def.RequiredFields,
	})
}

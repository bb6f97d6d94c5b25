// Package analysis exposes template field analysis.
package analysis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/docgen"
	"onboarding-backend/internal/shared/server/respond"
	"onboarding-backend/internal/templates"
)

// Handler wires the analyze endpoint to the document-generation client.
type Handler struct {
	Docgen    *docgen.Client
	Templates *templates.Store
}

// NewHandler constructs a Handler.
func NewHandler(dg *docgen.Client, tpl *templates.Store) *Handler {
	return &Handler{Docgen: dg, Templates: tpl}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	var in struct {
		StepKey          string `json:"stepKey"`
		TemplateName     string `json:"templateName"`
		Base64FileString string `json:"base64FileString"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	template, filename, err := h.Templates.Resolve(templates.ResolveInput{
		StepKey:          in.StepKey,
		TemplateName:     in.TemplateName,
		Base64FileString: in.Base64FileString,
	})
	if err != nil {
		var notFound *templates.NotFoundError
		switch {
		case errors.Is(err, templates.ErrTemplateRequired):
			respond.Error(c, http.StatusBadRequest, "validation_error", templates.ErrTemplateRequired.Error(), nil)
		case errors.As(err, &notFound):
			respond.Error(c, http.StatusNotFound, "template_not_found", notFound.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "analyze_failed", err.Error(), nil)
		}
		return
	}

	raw, err := h.Docgen.Analyze(c.Request.Context(), template, filename)
	if err != nil {
		var attempts *docgen.AttemptsError
		if errors.As(err, &attempts) {
			respond.JSON(c, http.StatusBadGateway, gin.H{"error": "foxit-analyze-failed", "attempts": attempts.Attempts})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "analyze_failed", err.Error(), nil)
		return
	}

	respond.OK(c, withProvider(raw))
}

// withProvider merges a provider marker into the response object; non-object
// results are wrapped instead.
func withProvider(raw json.RawMessage) any {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return gin.H{"provider": "foxit", "result": raw}
	}
	obj["provider"] = "foxit"
	return obj
}

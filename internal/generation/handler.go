package generation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/docgen"
	"onboarding-backend/internal/shared/server/middleware"
	"onboarding-backend/internal/shared/server/respond"
	"onboarding-backend/internal/templates"
)

// Handler wires HTTP handlers to the generation service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
	rg.POST("/preview", h.preview)
	rg.GET("/documents", h.listDocuments)
}

func (h *Handler) generate(c *gin.Context) {
	var in GenerateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if in.StepKey != "" {
		c.Set(middleware.StepKeyContextKey, in.StepKey)
	}
	if in.EmployeeKey != "" {
		c.Set(middleware.EmployeeKeyContextKey, in.EmployeeKey)
	}

	out, err := h.Svc.Generate(c.Request.Context(), in)
	if err != nil {
		var notFound *templates.NotFoundError
		var attempts *docgen.AttemptsError
		switch {
		case errors.Is(err, templates.ErrTemplateRequired):
			respond.Error(c, http.StatusBadRequest, "validation_error", templates.ErrTemplateRequired.Error(), nil)
		case errors.As(err, &notFound):
			respond.Error(c, http.StatusNotFound, "template_not_found", notFound.Error(), nil)
		case errors.Is(err, docgen.ErrAuthNotConfigured):
			respond.Error(c, http.StatusInternalServerError, "auth_not_configured", err.Error(), nil)
		case errors.As(err, &attempts):
			respond.JSON(c, http.StatusBadGateway, gin.H{"error": "foxit-generate-failed", "attempts": attempts.Attempts})
		default:
			respond.Error(c, http.StatusInternalServerError, "generate_failed", err.Error(), nil)
		}
		return
	}

	if !out.Saved {
		body := gin.H{"provider": "foxit", "saved": false, "reason": out.Reason, "foxit": out.Provider}
		if out.Detail != "" {
			body["detail"] = out.Detail
		}
		respond.OK(c, body)
		return
	}

	body := gin.H{
		"provider": "foxit",
		"saved":    true,
		"fileName": out.FileName,
		"fileUrl":  out.FileURL,
		"filePath": out.FilePath,
	}
	if out.Pages > 0 {
		body["pages"] = out.Pages
	}
	if out.FileBase64 != "" {
		body["fileBase64"] = out.FileBase64
	}
	respond.OK(c, body)
}

// preview is a stub kept for the UI; real previews would stream the artifact.
func (h *Handler) preview(c *gin.Context) {
	var in struct {
		StepKey string `json:"stepKey"`
	}
	_ = c.ShouldBindJSON(&in)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"status":  "queued",
		"action":  "preview",
		"stepKey": in.StepKey,
		"message": "Stub only. Generate a preview link or stream here.",
	})
}

func (h *Handler) listDocuments(c *gin.Context) {
	docs, err := h.Svc.Recent(c.Request.Context(), 50)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list_failed", "could not list generated documents", nil)
		return
	}
	respond.OK(c, gin.H{"documents": docs})
}

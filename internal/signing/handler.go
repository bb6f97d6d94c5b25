package signing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/shared/server/middleware"
	"onboarding-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the signing service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches signing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/esign/send", h.send)
	rg.GET("/esign/health", h.health)
	rg.POST("/send", h.sendStub)
}

func (h *Handler) send(c *gin.Context) {
	var in SendInput
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

	out, err := h.Svc.Send(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrPDFNotFound):
			respond.Error(c, http.StatusBadRequest, "pdf-not-found", err.Error(), nil)
		case errors.Is(err, ErrMissingSigner):
			respond.Error(c, http.StatusBadRequest, "missing-signer", err.Error(), nil)
		default:
			respond.JSON(c, http.StatusBadGateway, gin.H{"provider": "foxit-esign", "ok": false, "error": err.Error()})
		}
		return
	}

	body := gin.H{"provider": "foxit-esign", "ok": true, "result": out.Result.Payload()}
	if out.PublicFileURL != "" {
		body["publicFileUrl"] = out.PublicFileURL
	} else {
		body["publicFileUrl"] = nil
	}
	respond.OK(c, body)
}

func (h *Handler) health(c *gin.Context) {
	respond.OK(c, h.Svc.Health(c.Request.Context()))
}

// sendStub is the legacy send endpoint; live sends moved to /esign/send.
func (h *Handler) sendStub(c *gin.Context) {
	var in struct {
		StepKey string `json:"stepKey"`
	}
	_ = c.ShouldBindJSON(&in)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"status":  "queued",
		"action":  "send",
		"stepKey": in.StepKey,
		"message": "Use /api/esign/send for live eSign",
	})
}

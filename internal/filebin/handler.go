package filebin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/shared/server/respond"
)

// Handler exposes the filebin debug probe.
type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

// RegisterRoutes attaches the debug route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/debug/filebin", h.probe)
}

func (h *Handler) probe(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "url query param is required", nil)
		return
	}
	respond.OK(c, h.Client.Probe(c.Request.Context(), target))
}

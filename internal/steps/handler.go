package steps

import (
	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/shared/server/respond"
)

// Handler serves the onboarding checklist.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches checklist routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/steps", h.list)
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, gin.H{"steps": Catalog()})
}

package employees

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"onboarding-backend/internal/shared/server/respond"
)

// Handler serves the employee directory.
type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches employee routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/employees", h.list)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Store.List()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed-to-list-employees", "could not read employee directory", nil)
		return
	}
	respond.OK(c, gin.H{"employees": list})
}

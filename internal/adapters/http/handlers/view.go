package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/view"
)

// ViewHandler serves the widget's current view model.
type ViewHandler struct {
	renderer *view.Renderer
}

// NewViewHandler creates a view handler.
func NewViewHandler(renderer *view.Renderer) *ViewHandler {
	return &ViewHandler{renderer: renderer}
}

// Get handles GET /api/v1/view
func (h *ViewHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.renderer.Snapshot())
}

// RegisterViewRoutes registers the view route.
func (h *ViewHandler) RegisterViewRoutes(rg *gin.RouterGroup) {
	rg.GET("/view", h.Get)
}

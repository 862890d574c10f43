package handler

import (
	"github.com/gin-gonic/gin"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
)

// TrackingHandler handles the public tracking lookup.
type TrackingHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(checkoutService *checkoutapp.CheckoutService) *TrackingHandler {
	return &TrackingHandler{checkoutService: checkoutService}
}

// RegisterRoutes registers tracking routes on the given group
func (h *TrackingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tracking/:code", h.Track)
}

// Track looks up an order by its carrier tracking code
func (h *TrackingHandler) Track(c *gin.Context) {
	code := c.Param("code")

	tracking, err := h.checkoutService.GetOrderByTrackingCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tracking)
}

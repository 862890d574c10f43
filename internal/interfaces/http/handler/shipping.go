package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	shippingapp "github.com/vesti/backend/internal/application/shipping"
	"github.com/vesti/backend/internal/interfaces/http/middleware"
)

// ShippingHandler handles shipping estimation for the storefront.
type ShippingHandler struct {
	BaseHandler
	estimateService *shippingapp.EstimateService
}

// NewShippingHandler creates a new shipping handler
func NewShippingHandler(estimateService *shippingapp.EstimateService) *ShippingHandler {
	return &ShippingHandler{estimateService: estimateService}
}

// RegisterRoutes registers shipping routes on the given group
func (h *ShippingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shipping := rg.Group("/shipping")
	shipping.POST("/calculate", h.Calculate)
}

// Calculate quotes shipping options for a cart and destination CEP
func (h *ShippingHandler) Calculate(c *gin.Context) {
	var req shippingapp.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	quote, err := h.estimateService.Estimate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

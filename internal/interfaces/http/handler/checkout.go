package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
	"github.com/vesti/backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the public storefront checkout endpoints.
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// RegisterRoutes registers checkout routes on the given group
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout")
	checkout.POST("/orders", h.CreateOrder)
	checkout.GET("/orders/:orderNumber", h.GetOrder)
	checkout.GET("/orders/:orderNumber/payment-status", h.GetPaymentStatus)
	checkout.POST("/preferences", h.CreatePreference)
}

// CreateOrder handles a storefront checkout submission. The server
// recomputes the total before anything is persisted.
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req checkoutapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.checkoutService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	stampOrderNumber(c, order.OrderNumber)
	h.Created(c, order)
}

// GetOrder returns an order by its public order number
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderNumber := c.Param("orderNumber")
	stampOrderNumber(c, orderNumber)

	order, err := h.checkoutService.GetOrderByNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetPaymentStatus returns the lightweight payment polling shape for an order
func (h *CheckoutHandler) GetPaymentStatus(c *gin.Context) {
	orderNumber := c.Param("orderNumber")
	stampOrderNumber(c, orderNumber)

	status, err := h.checkoutService.GetPaymentStatus(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// CreatePreferenceRequest identifies the order to open a hosted checkout for
type CreatePreferenceRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
}

// CreatePreference creates (or refreshes) a hosted checkout session for a
// pending order
func (h *CheckoutHandler) CreatePreference(c *gin.Context) {
	var req CreatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	stampOrderNumber(c, req.OrderNumber)
	pref, err := h.checkoutService.CreatePreference(c.Request.Context(), req.OrderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, pref)
}

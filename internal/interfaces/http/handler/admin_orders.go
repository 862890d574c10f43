package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/interfaces/http/dto"
)

// AdminOrderHandler handles the authenticated order management endpoints.
type AdminOrderHandler struct {
	BaseHandler
	adminService *checkoutapp.AdminOrderService
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(adminService *checkoutapp.AdminOrderService) *AdminOrderHandler {
	return &AdminOrderHandler{adminService: adminService}
}

// RegisterRoutes registers admin order routes on the given group
func (h *AdminOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("", h.List)
	orders.GET("/:id", h.GetByID)
	orders.PATCH("/:id/status", h.UpdateStatus)
	orders.PATCH("/:id/tracking", h.SetTrackingCode)
	orders.POST("/:id/archive", h.Archive)
	orders.POST("/:id/unarchive", h.Unarchive)
	orders.DELETE("/:id", h.SoftDelete)
	orders.POST("/:id/restore", h.Restore)
	orders.DELETE("/:id/permanent", h.HardDelete)
}

// adminOrderListQuery carries admin listing query parameters
type adminOrderListQuery struct {
	dto.ListRequest
	Status         string `form:"status"`
	PaymentStatus  string `form:"payment_status"`
	Archived       *bool  `form:"archived"`
	IncludeDeleted bool   `form:"include_deleted"`
	StartDate      string `form:"start_date"`
	EndDate        string `form:"end_date"`
}

// List returns a paginated order listing with optional filters
func (h *AdminOrderHandler) List(c *gin.Context) {
	var query adminOrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := checkoutapp.OrderListFilter{
		Page:           query.Page,
		PageSize:       query.PageSize,
		OrderBy:        query.OrderBy,
		OrderDir:       query.OrderDir,
		Search:         query.Search,
		PaymentStatus:  optionalString(query.PaymentStatus),
		Archived:       query.Archived,
		IncludeDeleted: query.IncludeDeleted,
	}

	if query.Status != "" {
		status := checkout.OrderStatus(query.Status)
		filter.Status = &status
	}
	if t, ok := parseDateParam(query.StartDate); ok {
		filter.StartDate = &t
	}
	if t, ok := parseDateParam(query.EndDate); ok {
		filter.EndDate = &t
	}

	orders, total, err := h.adminService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// GetByID returns the full order for the admin detail view
func (h *AdminOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.adminService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatusRequest carries the target order status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus transitions an order to a new status
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.adminService.UpdateStatus(c.Request.Context(), orderID, checkout.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// SetTrackingCodeRequest carries the carrier tracking code
type SetTrackingCodeRequest struct {
	TrackingCode string `json:"tracking_code" binding:"required"`
}

// SetTrackingCode records the carrier tracking code on an order
func (h *AdminOrderHandler) SetTrackingCode(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req SetTrackingCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.adminService.SetTrackingCode(c.Request.Context(), orderID, req.TrackingCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Archive hides an order from the default listing
func (h *AdminOrderHandler) Archive(c *gin.Context) {
	h.simpleOrderAction(c, h.adminService.Archive)
}

// Unarchive returns an archived order to the default listing
func (h *AdminOrderHandler) Unarchive(c *gin.Context) {
	h.simpleOrderAction(c, h.adminService.Unarchive)
}

// SoftDelete marks an order as deleted without removing it
func (h *AdminOrderHandler) SoftDelete(c *gin.Context) {
	h.simpleOrderAction(c, h.adminService.SoftDelete)
}

// Restore undoes a soft delete
func (h *AdminOrderHandler) Restore(c *gin.Context) {
	h.simpleOrderAction(c, h.adminService.Restore)
}

// HardDelete permanently removes a soft-deleted order
func (h *AdminOrderHandler) HardDelete(c *gin.Context) {
	h.simpleOrderAction(c, h.adminService.HardDelete)
}

// simpleOrderAction runs an id-only admin action and replies 204
func (h *AdminOrderHandler) simpleOrderAction(c *gin.Context, action func(ctx context.Context, id uuid.UUID) error) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	if err := action(c.Request.Context(), orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// orderID parses the :id path parameter
func (h *AdminOrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return uuid.Nil, false
	}
	return orderID, true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseDateParam accepts either a date (2006-01-02) or an RFC 3339 timestamp
func parseDateParam(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

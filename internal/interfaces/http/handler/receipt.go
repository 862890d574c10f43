package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
)

// ReceiptHandler serves PDF receipts for paid orders.
type ReceiptHandler struct {
	BaseHandler
	receiptService *checkoutapp.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *checkoutapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// RegisterRoutes registers receipt routes on the given group
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/checkout/orders/:orderNumber/receipt", h.Download)
}

// Download renders and streams the PDF receipt for a paid order
func (h *ReceiptHandler) Download(c *gin.Context) {
	orderNumber := c.Param("orderNumber")
	stampOrderNumber(c, orderNumber)

	pdf, err := h.receiptService.GetReceipt(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	fileName := h.receiptService.FileName(orderNumber)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
	"github.com/vesti/backend/internal/domain/payment"
	"github.com/vesti/backend/internal/interfaces/http/dto"
)

// WebhookHandler receives payment gateway and email provider callbacks.
// Gateway deliveries are acknowledged with 200 for every outcome except a
// failed signature check, so the provider retries only what is worth
// retrying.
type WebhookHandler struct {
	BaseHandler
	webhookService *checkoutapp.WebhookService
	emailSecret    string
	logger         *zap.Logger
}

// NewWebhookHandler creates a new webhook handler. emailSecret guards the
// email event endpoint; empty disables the check.
func NewWebhookHandler(webhookService *checkoutapp.WebhookService, emailSecret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		webhookService: webhookService,
		emailSecret:    emailSecret,
		logger:         logger,
	}
}

// RegisterRoutes registers webhook routes on the given group
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout/webhook", h.HandlePaymentWebhook)
	rg.POST("/email/webhook", h.HandleEmailWebhook)
}

// paymentWebhookPayload is the gateway notification body. The resource id
// may arrive in the body or as the data.id query parameter.
type paymentWebhookPayload struct {
	ID     any    `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// HandlePaymentWebhook processes a payment gateway notification
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	var payload paymentWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Malformed payloads are acknowledged; retrying will not fix them
		h.logger.Warn("malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	resourceID := payload.Data.ID
	if resourceID == "" {
		resourceID = c.Query("data.id")
	}
	notificationType := payload.Type
	if notificationType == "" {
		notificationType = c.Query("type")
	}

	notification := checkoutapp.PaymentNotification{
		ID:              notificationIDString(payload.ID),
		Type:            notificationType,
		ResourceID:      resourceID,
		RequestID:       c.GetHeader("x-request-id"),
		SignatureHeader: c.GetHeader("x-signature"),
	}

	if err := h.webhookService.HandlePaymentNotification(c.Request.Context(), notification); err != nil {
		if errors.Is(err, payment.ErrMissingSignature) ||
			errors.Is(err, payment.ErrMalformedSignature) ||
			errors.Is(err, payment.ErrSignatureMismatch) {
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
			return
		}
		// The service only errors on signature failures; anything else
		// is acknowledged so the provider stops retrying
		h.logger.Error("unexpected webhook processing error", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// notificationIDString renders the provider notification id, which some
// providers send as a number and some as a string
func notificationIDString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		// Notification ids are integral
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// emailWebhookPayload is the email provider event body
type emailWebhookPayload struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      struct {
		Tags []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"tags"`
	} `json:"data"`
}

// HandleEmailWebhook records an email deliverability event on the order the
// message was tagged with
func (h *WebhookHandler) HandleEmailWebhook(c *gin.Context) {
	if h.emailSecret != "" {
		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.emailSecret)) != 1 {
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "Webhook secret verification failed")
			return
		}
	}

	var payload emailWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("malformed email webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var orderNumber string
	for _, tag := range payload.Data.Tags {
		if tag.Name == "order_number" {
			orderNumber = tag.Value
			break
		}
	}
	stampOrderNumber(c, orderNumber)

	notification := checkoutapp.EmailEventNotification{
		EventType:   trimEventPrefix(payload.Type),
		OrderNumber: orderNumber,
		OccurredAt:  payload.CreatedAt,
	}

	// Always acknowledged; the service logs anything surprising
	_ = h.webhookService.HandleEmailEvent(c.Request.Context(), notification)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// trimEventPrefix strips the provider's "email." event namespace
func trimEventPrefix(eventType string) string {
	const prefix = "email."
	if len(eventType) > len(prefix) && eventType[:len(prefix)] == prefix {
		return eventType[len(prefix):]
	}
	return eventType
}

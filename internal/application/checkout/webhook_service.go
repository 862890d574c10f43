package checkout

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/payment"
	"github.com/vesti/backend/internal/domain/shared"
)

// notificationTTL bounds how long a processed notification id suppresses
// redeliveries of the same notification
const notificationTTL = 24 * time.Hour

// PaymentNotification carries the fields extracted from a gateway webhook
// delivery. ResourceID is the gateway payment id the notification refers to.
type PaymentNotification struct {
	ID              string // provider notification / delivery id
	Type            string // e.g. "payment"
	ResourceID      string
	RequestID       string
	SignatureHeader string
}

// WebhookService reconciles gateway payment notifications against orders.
// Processing is deliberately tolerant: any outcome other than a bad
// signature acknowledges the delivery so the gateway stops retrying.
type WebhookService struct {
	orderRepo   checkout.OrderRepository
	gateway     payment.Gateway
	idempotency shared.IdempotencyStore
	emailSender EmailSender
	logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService. The idempotency store and
// email sender are optional; pass nil to disable the concern.
func NewWebhookService(orderRepo checkout.OrderRepository, gateway payment.Gateway, idempotency shared.IdempotencyStore, emailSender EmailSender, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		orderRepo:   orderRepo,
		gateway:     gateway,
		idempotency: idempotency,
		emailSender: emailSender,
		logger:      logger,
	}
}

// HandlePaymentNotification processes one payment webhook delivery.
// It returns an error only when the signature check fails; every other
// outcome is logged and acknowledged.
func (s *WebhookService) HandlePaymentNotification(ctx context.Context, notification PaymentNotification) error {
	if err := s.gateway.VerifySignature(notification.SignatureHeader, notification.RequestID, notification.ResourceID); err != nil {
		s.logger.Warn("webhook signature rejected",
			zap.String("resource_id", notification.ResourceID),
			zap.Error(err))
		return err
	}

	if notification.Type != "" && notification.Type != "payment" {
		s.logger.Debug("ignoring non-payment notification",
			zap.String("type", notification.Type))
		return nil
	}
	if notification.ResourceID == "" {
		s.logger.Warn("payment notification without resource id")
		return nil
	}

	if s.idempotency != nil && notification.ID != "" {
		isNew, err := s.idempotency.MarkProcessed(ctx, notification.ID, notificationTTL)
		if err != nil {
			// The transitions below are idempotent, so a store failure
			// degrades to reprocessing instead of dropping the event
			s.logger.Warn("idempotency check failed, processing anyway", zap.Error(err))
		} else if !isNew {
			s.logger.Info("duplicate notification skipped",
				zap.String("notification_id", notification.ID))
			return nil
		}
	}

	detail, err := s.gateway.FetchPayment(ctx, notification.ResourceID)
	if err != nil {
		s.logger.Error("failed to fetch payment for notification",
			zap.String("resource_id", notification.ResourceID),
			zap.Error(err))
		return nil
	}

	if detail.ExternalReference == "" {
		s.logger.Warn("payment carries no external reference",
			zap.String("payment_id", detail.ID))
		return nil
	}

	order, err := s.orderRepo.FindByOrderNumber(ctx, detail.ExternalReference)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("payment references unknown order",
				zap.String("payment_id", detail.ID),
				zap.String("order_number", detail.ExternalReference))
			return nil
		}
		s.logger.Error("order lookup failed",
			zap.String("order_number", detail.ExternalReference),
			zap.Error(err))
		return nil
	}

	s.reconcile(ctx, order, detail)
	return nil
}

// reconcile applies the payment detail to the order
func (s *WebhookService) reconcile(ctx context.Context, order *checkout.Order, detail *payment.PaymentDetail) {
	target, known := checkout.MapGatewayStatus(detail.Status)
	if !known {
		s.logger.Warn("unknown gateway payment status, order left untouched",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_status", detail.Status))
		return
	}

	wasPaid := order.IsPaid()
	order.RecordPayment(detail.ID, detail.Status, detail.PaymentMethod, detail.Installments)

	switch target {
	case checkout.OrderStatusPaid:
		if err := order.MarkPaid(); err != nil {
			s.logger.Warn("cannot mark order as paid",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", order.Status.String()),
				zap.Error(err))
			return
		}
	case checkout.OrderStatusFailed:
		if err := order.MarkFailed(); err != nil {
			s.logger.Warn("cannot mark order as failed",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", order.Status.String()),
				zap.Error(err))
			return
		}
	case checkout.OrderStatusPending:
		// pending / in_process: payment linkage recorded, status unchanged
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("failed to persist reconciled order",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return
	}

	s.logger.Info("order reconciled from payment notification",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_status", detail.Status),
		zap.String("order_status", order.Status.String()))

	if target == checkout.OrderStatusPaid && !wasPaid {
		s.issueVerificationCode(ctx, order)
		s.sendConfirmation(ctx, order)
	}
}

// issueVerificationCode assigns the anti-fraud code at most once per order.
// The conditional update keeps concurrent webhook deliveries from issuing
// two different codes.
func (s *WebhookService) issueVerificationCode(ctx context.Context, order *checkout.Order) {
	if order.HasVerificationCode() {
		return
	}

	code := checkout.GenerateVerificationCode()
	assigned, err := s.orderRepo.AssignVerificationCodeOnce(ctx, order.ID, code)
	if err != nil {
		s.logger.Error("failed to assign verification code",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return
	}
	if !assigned {
		// Another delivery won the race; reload so the email carries its code
		fresh, err := s.orderRepo.FindByID(ctx, order.ID)
		if err == nil {
			order.VerificationCode = fresh.VerificationCode
		}
		return
	}
	order.VerificationCode = code
}

// sendConfirmation sends the payment confirmation email, best effort
func (s *WebhookService) sendConfirmation(ctx context.Context, order *checkout.Order) {
	if s.emailSender == nil {
		return
	}
	if err := s.emailSender.SendOrderConfirmation(ctx, order); err != nil {
		s.logger.Error("failed to send confirmation email",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return
	}
	now := time.Now()
	if err := order.RecordEmailEvent(checkout.EmailEventSent, now); err == nil {
		if err := s.orderRepo.Update(ctx, order); err != nil {
			s.logger.Warn("failed to record email sent timestamp",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}
}

// EmailEventNotification carries the fields extracted from an email provider
// webhook delivery
type EmailEventNotification struct {
	EventType   string
	OrderNumber string
	OccurredAt  time.Time
}

// HandleEmailEvent records a deliverability event on the matching order.
// Unknown events and unknown orders are logged and acknowledged.
func (s *WebhookService) HandleEmailEvent(ctx context.Context, notification EmailEventNotification) error {
	event, err := checkout.ParseEmailEvent(notification.EventType)
	if err != nil {
		s.logger.Debug("ignoring unknown email event",
			zap.String("event_type", notification.EventType))
		return nil
	}
	if notification.OrderNumber == "" {
		s.logger.Debug("email event without order number tag")
		return nil
	}

	order, err := s.orderRepo.FindByOrderNumber(ctx, notification.OrderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("email event references unknown order",
				zap.String("order_number", notification.OrderNumber))
			return nil
		}
		s.logger.Error("order lookup failed for email event",
			zap.String("order_number", notification.OrderNumber),
			zap.Error(err))
		return nil
	}

	occurredAt := notification.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	if err := order.RecordEmailEvent(event, occurredAt); err != nil {
		return nil
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("failed to persist email event",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
	return nil
}

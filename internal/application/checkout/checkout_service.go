// Package checkout orchestrates the storefront checkout flow: order
// creation with server-side pricing validation, hosted-checkout preference
// creation, webhook reconciliation and the public lookup operations.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/payment"
	"github.com/vesti/backend/internal/domain/shared"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
)

// orderNumberRetries bounds how often order creation retries on a
// duplicate order number before giving up
const orderNumberRetries = 3

// CheckoutService handles the public storefront checkout operations
type CheckoutService struct {
	orderRepo   checkout.OrderRepository
	gateway     payment.Gateway
	settings    payment.Settings
	orderPrefix string
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(orderRepo checkout.OrderRepository, gateway payment.Gateway, settings payment.Settings, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		orderRepo:   orderRepo,
		gateway:     gateway,
		settings:    settings,
		orderPrefix: checkout.DefaultOrderNumberPrefix,
		logger:      logger,
	}
}

// CreateOrder validates a checkout submission and persists the order in
// pending status. The submitted total is recomputed server-side and the
// request is rejected when it disagrees beyond the tolerance.
func (s *CheckoutService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	taxID, err := valueobject.NewCPF(req.CustomerTaxID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	address, err := valueobject.NewAddress(
		req.Address.Street, req.Address.Number, req.Address.Neighborhood,
		req.Address.City, req.Address.State, req.Address.PostalCode,
		valueobject.WithComplement(req.Address.Complement),
	)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	// Recompute the total from the submitted lines before anything is persisted
	pricedItems := make([]checkout.PricedItem, 0, len(req.Items))
	for _, item := range req.Items {
		pricedItems = append(pricedItems, checkout.PricedItem{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	if err := checkout.ValidateSubmittedTotal(pricedItems, req.Discount, req.ShippingCost, req.Total); err != nil {
		return nil, err
	}

	subtotal := checkout.ComputeExpectedTotal(pricedItems, decimal.Zero, decimal.Zero)

	var order *checkout.Order
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		order, err = checkout.NewOrder(checkout.NewOrderParams{
			OrderNumber:    checkout.GenerateOrderNumber(s.orderPrefix, time.Now()),
			CustomerName:   req.CustomerName,
			CustomerEmail:  req.CustomerEmail,
			CustomerPhone:  req.CustomerPhone,
			TaxID:          taxID,
			Address:        address,
			Subtotal:       subtotal,
			DiscountAmount: req.Discount,
			ShippingCost:   req.ShippingCost,
			TotalAmount:    req.Total,
		})
		if err != nil {
			return nil, err
		}

		for _, item := range req.Items {
			if _, err := order.AddItem(
				item.ProductID, item.ProductName, item.ImageURL,
				item.Size, item.Color, item.Fabric, item.PrintPosition,
				item.UnitPrice, item.Quantity,
			); err != nil {
				return nil, err
			}
		}

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Warn("order number collision, regenerating",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, shared.NewDomainError("ORDER_NUMBER_EXHAUSTED", "Could not allocate a unique order number")
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", order.ItemCount()))

	response := ToOrderResponse(order)
	return &response, nil
}

// CreatePreference opens a hosted-checkout session for a pending order.
// Re-quoting an order overwrites the previous preference id.
func (s *CheckoutService) CreatePreference(ctx context.Context, orderNumber string) (*PreferenceResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	if order.IsPaid() {
		return nil, shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}

	pref, err := s.gateway.CreatePreference(ctx, payment.CreatePreferenceRequest{
		Order:    order,
		Settings: s.settings,
	})
	if err != nil {
		return nil, err
	}

	if err := order.SetPreference(pref.ID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("payment preference created",
		zap.String("order_number", order.OrderNumber),
		zap.String("preference_id", pref.ID))

	return &PreferenceResponse{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
		ExpiresAt:        pref.ExpiresAt,
	}, nil
}

// GetOrderByNumber retrieves an order by its public number
func (s *CheckoutService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetPaymentStatus returns the lightweight payment polling view of an order
func (s *CheckoutService) GetPaymentStatus(ctx context.Context, orderNumber string) (*PaymentStatusResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	return &PaymentStatusResponse{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus,
		PaidAt:        order.PaidAt,
	}, nil
}

// GetOrderByTrackingCode resolves a tracking code to its public tracking view
func (s *CheckoutService) GetOrderByTrackingCode(ctx context.Context, trackingCode string) (*TrackingResponse, error) {
	order, err := s.orderRepo.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	return &TrackingResponse{
		OrderNumber:  order.OrderNumber,
		Status:       order.Status.String(),
		TrackingCode: order.TrackingCode,
		CreatedAt:    order.CreatedAt,
	}, nil
}

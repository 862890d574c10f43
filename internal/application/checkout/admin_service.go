package checkout

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared"
)

// AdminOrderService handles the back-office order operations
type AdminOrderService struct {
	orderRepo checkout.OrderRepository
	logger    *zap.Logger
}

// NewAdminOrderService creates a new AdminOrderService
func NewAdminOrderService(orderRepo checkout.OrderRepository, logger *zap.Logger) *AdminOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminOrderService{orderRepo: orderRepo, logger: logger}
}

// List retrieves orders with filtering, search and pagination
func (s *AdminOrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.PaymentStatus != nil {
		domainFilter.Filters["payment_status"] = *filter.PaymentStatus
	}
	if filter.Archived != nil {
		domainFilter.Filters["archived"] = *filter.Archived
	}
	if filter.IncludeDeleted {
		domainFilter.Filters["include_deleted"] = true
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}

// GetByID retrieves a full order by id
func (s *AdminOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// UpdateStatus applies a status override honoring the transition rules
func (s *AdminOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status checkout.OrderStatus) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", status.String()))

	response := ToOrderResponse(order)
	return &response, nil
}

// SetTrackingCode records the shipping tracking code on an order
func (s *AdminOrderService) SetTrackingCode(ctx context.Context, orderID uuid.UUID, trackingCode string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.SetTrackingCode(trackingCode); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("tracking code set",
		zap.String("order_number", order.OrderNumber),
		zap.String("tracking_code", trackingCode))

	response := ToOrderResponse(order)
	return &response, nil
}

// Archive marks an order as archived
func (s *AdminOrderService) Archive(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := order.Archive(); err != nil {
		return err
	}
	return s.orderRepo.Update(ctx, order)
}

// Unarchive clears the archived flag on an order
func (s *AdminOrderService) Unarchive(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	order.Unarchive()
	return s.orderRepo.Update(ctx, order)
}

// SoftDelete marks an order as deleted, removing it from default listings
func (s *AdminOrderService) SoftDelete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	order.SoftDelete()
	return s.orderRepo.Update(ctx, order)
}

// Restore clears the soft-deleted flag on an order
func (s *AdminOrderService) Restore(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	order.Restore()
	return s.orderRepo.Update(ctx, order)
}

// HardDelete permanently removes a soft-deleted order and its items
func (s *AdminOrderService) HardDelete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Order must be soft-deleted before hard deletion")
	}

	if err := s.orderRepo.HardDelete(ctx, orderID); err != nil {
		return err
	}

	s.logger.Info("order hard deleted",
		zap.String("order_number", order.OrderNumber))
	return nil
}

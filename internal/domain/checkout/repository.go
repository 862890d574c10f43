package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/vesti/backend/internal/domain/shared"
)

// OrderRepository is the persistence port for orders
type OrderRepository interface {
	// FindByID finds an order with its items by id
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByOrderNumber finds an order with its items by its public number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	// FindByTrackingCode finds an order by its shipping tracking code
	FindByTrackingCode(ctx context.Context, trackingCode string) (*Order, error)
	// FindAll lists orders with filtering, search and sort
	// Soft-deleted orders are excluded unless the filter asks for them
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create persists a new order together with its items in one transaction.
	// Returns shared.ErrAlreadyExists when the order number collides with an
	// existing one so the caller can regenerate and retry.
	Create(ctx context.Context, order *Order) error
	// Update persists changes to an existing order (items are immutable)
	Update(ctx context.Context, order *Order) error

	// AssignVerificationCodeOnce sets the verification code only if none has
	// been assigned yet (conditional update, safe under concurrent webhooks).
	// Returns true when this call performed the assignment.
	AssignVerificationCodeOnce(ctx context.Context, orderID uuid.UUID, code string) (bool, error)

	// HardDelete permanently removes a soft-deleted order and its items
	HardDelete(ctx context.Context, id uuid.UUID) error
}

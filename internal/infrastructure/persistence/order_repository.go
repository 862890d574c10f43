package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared"
)

// GormOrderRepository implements checkout.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Order, error) {
	var order checkout.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order with its items by its public number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*checkout.Order, error) {
	var order checkout.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByTrackingCode finds an order by its shipping tracking code
func (r *GormOrderRepository) FindByTrackingCode(ctx context.Context, trackingCode string) (*checkout.Order, error) {
	var order checkout.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tracking_code = ?", trackingCode).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists orders with filtering, search and sort.
// Soft-deleted orders are excluded unless the filter asks for them.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]checkout.Order, error) {
	var orders []checkout.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&checkout.Order{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&checkout.Order{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new order together with its items in one transaction.
// Returns shared.ErrAlreadyExists when the order number collides with an
// existing one so the caller can regenerate and retry.
func (r *GormOrderRepository) Create(ctx context.Context, order *checkout.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Create(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing order. Items are immutable snapshots
// and are never rewritten here.
func (r *GormOrderRepository) Update(ctx context.Context, order *checkout.Order) error {
	order.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&checkout.Order{}).
		Where("id = ?", order.ID).
		Select("*").
		Omit("id", "created_at", "Items").
		Updates(order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AssignVerificationCodeOnce sets the verification code only if none has been
// assigned yet. The conditional update keeps concurrent webhook deliveries
// from overwriting an already-issued code.
func (r *GormOrderRepository) AssignVerificationCodeOnce(ctx context.Context, orderID uuid.UUID, code string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&checkout.Order{}).
		Where("id = ? AND (verification_code IS NULL OR verification_code = '')", orderID).
		Updates(map[string]interface{}{
			"verification_code": code,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HardDelete permanently removes an order and its items
func (r *GormOrderRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&checkout.OrderItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&checkout.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// isDuplicateKey reports whether the error is a unique constraint violation
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite, used in tests
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Soft-deleted orders stay hidden unless explicitly requested
	if include, ok := filter.Filters["include_deleted"].(bool); !ok || !include {
		query = query.Where("deleted_at IS NULL")
	}

	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "archived":
			if archived, ok := value.(bool); ok {
				if archived {
					query = query.Where("archived_at IS NOT NULL")
				} else {
					query = query.Where("archived_at IS NULL")
				}
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ checkout.OrderRepository = (*GormOrderRepository)(nil)

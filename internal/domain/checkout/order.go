package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vesti/backend/internal/domain/shared"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the lifecycle status of a storefront order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPaid || target == OrderStatusFailed || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusProcessing || target == OrderStatusShipped ||
			target == OrderStatusCancelled || target == OrderStatusRefunded
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled || target == OrderStatusRefunded
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusRefunded
	case OrderStatusDelivered:
		return target == OrderStatusRefunded
	case OrderStatusFailed:
		// A customer may retry payment on a failed order
		return target == OrderStatusPending || target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusCancelled, OrderStatusRefunded:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed from this status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// OrderItem is an immutable snapshot of a cart line at time of purchase
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	ImageURL      string
	Size          string
	Color         string
	Fabric        string
	PrintPosition string
	UnitPrice     decimal.Decimal
	Quantity      int
	Subtotal      decimal.Decimal // UnitPrice * Quantity, as submitted
	CreatedAt     time.Time
}

// NewOrderItem creates a new order item snapshot
func NewOrderItem(orderID, productID uuid.UUID, productName, imageURL, size, color, fabric, printPosition string, unitPrice decimal.Decimal, quantity int) (*OrderItem, error) {
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:            uuid.New(),
		OrderID:       orderID,
		ProductID:     productID,
		ProductName:   productName,
		ImageURL:      imageURL,
		Size:          size,
		Color:         color,
		Fabric:        fabric,
		PrintPosition: printPosition,
		UnitPrice:     unitPrice,
		Quantity:      quantity,
		Subtotal:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:     time.Now(),
	}, nil
}

// Order is the aggregate root for a checkout attempt
// It is created in pending status by the storefront and mutated afterwards
// only through the payment flow and admin operations
type Order struct {
	shared.BaseEntity
	OrderNumber string

	// Customer identity
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CustomerTaxID string // CPF, digits only

	// Delivery address
	AddressStreet       string
	AddressNumber       string
	AddressComplement   string
	AddressNeighborhood string
	AddressCity         string
	AddressState        string
	AddressPostalCode   string // CEP, digits only

	// Monetary fields
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	TotalAmount    decimal.Decimal

	// Gateway linkage
	PreferenceID  string
	PaymentID     string
	PaymentStatus string
	PaymentMethod string
	Installments  int

	Status           OrderStatus
	TrackingCode     string
	VerificationCode string // assigned at most once, on first approval
	PaidAt           *time.Time

	// Soft state
	ArchivedAt *time.Time
	DeletedAt  *time.Time

	// Email deliverability audit
	EmailSentAt       *time.Time
	EmailDeliveredAt  *time.Time
	EmailOpenedAt     *time.Time
	EmailComplainedAt *time.Time
	EmailFailedAt     *time.Time

	Items []OrderItem
}

// NewOrderParams carries the validated inputs for creating an order
type NewOrderParams struct {
	OrderNumber    string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	TaxID          valueobject.CPF
	Address        valueobject.Address
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	TotalAmount    decimal.Decimal
}

// NewOrder creates a new order in pending status
func NewOrder(p NewOrderParams) (*Order, error) {
	if p.OrderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if !OrderNumberPattern.MatchString(p.OrderNumber) {
		return nil, shared.NewDomainErrorf("INVALID_ORDER_NUMBER", "Order number %q does not match the expected format", p.OrderNumber)
	}
	if p.CustomerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if p.CustomerEmail == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_EMAIL", "Customer email cannot be empty")
	}
	if p.Address.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Delivery address is required")
	}
	if p.Subtotal.IsNegative() || p.DiscountAmount.IsNegative() || p.ShippingCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Monetary fields cannot be negative")
	}

	return &Order{
		BaseEntity:          shared.NewBaseEntity(),
		OrderNumber:         p.OrderNumber,
		CustomerName:        p.CustomerName,
		CustomerEmail:       p.CustomerEmail,
		CustomerPhone:       p.CustomerPhone,
		CustomerTaxID:       p.TaxID.String(),
		AddressStreet:       p.Address.Street(),
		AddressNumber:       p.Address.Number(),
		AddressComplement:   p.Address.Complement(),
		AddressNeighborhood: p.Address.Neighborhood(),
		AddressCity:         p.Address.City(),
		AddressState:        p.Address.State(),
		AddressPostalCode:   p.Address.PostalCode(),
		Subtotal:            p.Subtotal,
		DiscountAmount:      p.DiscountAmount,
		ShippingCost:        p.ShippingCost,
		TotalAmount:         p.TotalAmount,
		Status:              OrderStatusPending,
		Items:               make([]OrderItem, 0),
	}, nil
}

// AddItem appends an item snapshot to the order
// Only allowed before the order is persisted (pending status, no payment yet)
func (o *Order) AddItem(productID uuid.UUID, productName, imageURL, size, color, fabric, printPosition string, unitPrice decimal.Decimal, quantity int) (*OrderItem, error) {
	if o.Status != OrderStatusPending || o.PaymentID != "" {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items after checkout")
	}

	item, err := NewOrderItem(o.ID, productID, productName, imageURL, size, color, fabric, printPosition, unitPrice, quantity)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.Touch()
	return item, nil
}

// DeliveryAddress reconstructs the address value object
func (o *Order) DeliveryAddress() valueobject.Address {
	addr, err := valueobject.NewAddress(
		o.AddressStreet, o.AddressNumber, o.AddressNeighborhood,
		o.AddressCity, o.AddressState, o.AddressPostalCode,
		valueobject.WithComplement(o.AddressComplement),
	)
	if err != nil {
		return valueobject.Address{}
	}
	return addr
}

// SetPreference records the payment gateway preference id
// Re-quoting an order overwrites the previous preference
func (o *Order) SetPreference(preferenceID string) error {
	if preferenceID == "" {
		return shared.NewDomainError("INVALID_PREFERENCE", "Preference id cannot be empty")
	}
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot quote a deleted order")
	}
	o.PreferenceID = preferenceID
	o.Touch()
	return nil
}

// RecordPayment stores the gateway payment linkage fields
func (o *Order) RecordPayment(paymentID, paymentStatus, paymentMethod string, installments int) {
	o.PaymentID = paymentID
	o.PaymentStatus = paymentStatus
	o.PaymentMethod = paymentMethod
	o.Installments = installments
	o.Touch()
}

// MarkPaid transitions the order to paid
// Re-applying on an already paid order only refreshes the timestamp
func (o *Order) MarkPaid() error {
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot transition a deleted order")
	}
	now := time.Now()
	if o.Status == OrderStatusPaid {
		o.UpdatedAt = now
		return nil
	}
	if !o.Status.CanTransitionTo(OrderStatusPaid) {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot mark order as paid in %s status", o.Status)
	}
	o.Status = OrderStatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	return nil
}

// MarkFailed transitions the order to failed
func (o *Order) MarkFailed() error {
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot transition a deleted order")
	}
	if o.Status == OrderStatusFailed {
		o.Touch()
		return nil
	}
	if !o.Status.CanTransitionTo(OrderStatusFailed) {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot mark order as failed in %s status", o.Status)
	}
	o.Status = OrderStatusFailed
	o.Touch()
	return nil
}

// TransitionTo applies an admin status override honoring the transition rules
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf("INVALID_STATUS", "Unknown order status %q", target)
	}
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot transition a deleted order")
	}
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot transition order from %s to %s", o.Status, target)
	}
	now := time.Now()
	o.Status = target
	if target == OrderStatusPaid && o.PaidAt == nil {
		o.PaidAt = &now
	}
	o.UpdatedAt = now
	return nil
}

// SetTrackingCode records the shipping tracking code
func (o *Order) SetTrackingCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_TRACKING_CODE", "Tracking code cannot be empty")
	}
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a deleted order")
	}
	o.TrackingCode = code
	o.Touch()
	return nil
}

// Archive marks the order as archived
func (o *Order) Archive() error {
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot archive a deleted order")
	}
	if o.ArchivedAt != nil {
		return nil
	}
	now := time.Now()
	o.ArchivedAt = &now
	o.UpdatedAt = now
	return nil
}

// Unarchive clears the archived flag
func (o *Order) Unarchive() {
	o.ArchivedAt = nil
	o.Touch()
}

// SoftDelete marks the order as deleted
// Soft-deleted orders are excluded from default listings and cannot
// transition further except restore or hard delete
func (o *Order) SoftDelete() {
	if o.DeletedAt != nil {
		return
	}
	now := time.Now()
	o.DeletedAt = &now
	o.UpdatedAt = now
}

// Restore clears the soft-deleted flag
func (o *Order) Restore() {
	o.DeletedAt = nil
	o.Touch()
}

// IsDeleted returns true if the order is soft-deleted
func (o *Order) IsDeleted() bool {
	return o.DeletedAt != nil
}

// IsArchived returns true if the order is archived
func (o *Order) IsArchived() bool {
	return o.ArchivedAt != nil
}

// IsPaid returns true if the order has been paid
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusProcessing ||
		o.Status == OrderStatusShipped || o.Status == OrderStatusDelivered
}

// HasVerificationCode returns true if the anti-fraud code was already issued
func (o *Order) HasVerificationCode() bool {
	return o.VerificationCode != ""
}

// RecordEmailEvent stamps the matching deliverability timestamp
func (o *Order) RecordEmailEvent(event EmailEvent, at time.Time) error {
	switch event {
	case EmailEventSent:
		o.EmailSentAt = &at
	case EmailEventDelivered:
		o.EmailDeliveredAt = &at
	case EmailEventOpened:
		o.EmailOpenedAt = &at
	case EmailEventComplained:
		o.EmailComplainedAt = &at
	case EmailEventFailed:
		o.EmailFailedAt = &at
	default:
		return shared.NewDomainErrorf("INVALID_EMAIL_EVENT", "Unknown email event %q", event)
	}
	o.Touch()
	return nil
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// EmailEvent identifies a transactional email deliverability event
type EmailEvent string

const (
	EmailEventSent       EmailEvent = "sent"
	EmailEventDelivered  EmailEvent = "delivered"
	EmailEventOpened     EmailEvent = "opened"
	EmailEventComplained EmailEvent = "complained"
	EmailEventFailed     EmailEvent = "failed"
)

// ParseEmailEvent maps a provider event type string to an EmailEvent
func ParseEmailEvent(s string) (EmailEvent, error) {
	switch EmailEvent(s) {
	case EmailEventSent, EmailEventDelivered, EmailEventOpened, EmailEventComplained, EmailEventFailed:
		return EmailEvent(s), nil
	}
	return "", fmt.Errorf("unknown email event %q", s)
}

package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vesti/backend/internal/domain/checkout"
)

// ==================== Checkout DTOs ====================

// CreateOrderRequest represents a storefront checkout submission
type CreateOrderRequest struct {
	CustomerName  string                   `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerEmail string                   `json:"customer_email" binding:"required,email"`
	CustomerPhone string                   `json:"customer_phone"`
	CustomerTaxID string                   `json:"customer_tax_id" binding:"required"`
	Address       DeliveryAddressInput     `json:"address" binding:"required"`
	Items         []CreateOrderItemInput   `json:"items" binding:"required,min=1"`
	Discount      decimal.Decimal          `json:"discount"`
	ShippingCost  decimal.Decimal          `json:"shipping_cost"`
	Total         decimal.Decimal          `json:"total" binding:"required"`
}

// DeliveryAddressInput represents the delivery address in a checkout submission
type DeliveryAddressInput struct {
	Street       string `json:"street" binding:"required,min=1,max=200"`
	Number       string `json:"number" binding:"required,min=1,max=20"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" binding:"required,min=1,max=100"`
	City         string `json:"city" binding:"required,min=1,max=100"`
	State        string `json:"state" binding:"required,len=2"`
	PostalCode   string `json:"postal_code" binding:"required"`
}

// CreateOrderItemInput represents a cart line in a checkout submission
type CreateOrderItemInput struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	ProductName   string          `json:"product_name" binding:"required,min=1,max=200"`
	ImageURL      string          `json:"image_url"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Fabric        string          `json:"fabric"`
	PrintPosition string          `json:"print_position"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity      int             `json:"quantity" binding:"required,min=1"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ImageURL      string          `json:"image_url,omitempty"`
	Size          string          `json:"size,omitempty"`
	Color         string          `json:"color,omitempty"`
	Fabric        string          `json:"fabric,omitempty"`
	PrintPosition string          `json:"print_position,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// OrderResponse represents a full order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email"`
	CustomerPhone    string              `json:"customer_phone,omitempty"`
	Address          DeliveryAddressInput `json:"address"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Discount         decimal.Decimal     `json:"discount"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	Total            decimal.Decimal     `json:"total"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status,omitempty"`
	PaymentMethod    string              `json:"payment_method,omitempty"`
	Installments     int                 `json:"installments,omitempty"`
	PreferenceID     string              `json:"preference_id,omitempty"`
	TrackingCode     string              `json:"tracking_code,omitempty"`
	VerificationCode string              `json:"verification_code,omitempty"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ArchivedAt       *time.Time          `json:"archived_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	Items            []OrderItemResponse `json:"items"`
}

// OrderListItemResponse is the compact shape used by admin listings
type OrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	TrackingCode  string          `json:"tracking_code,omitempty"`
	ItemCount     int             `json:"item_count"`
	Archived      bool            `json:"archived"`
	Deleted       bool            `json:"deleted"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PreferenceResponse represents a hosted-checkout session in API responses
type PreferenceResponse struct {
	PreferenceID     string    `json:"preference_id"`
	InitPoint        string    `json:"init_point"`
	SandboxInitPoint string    `json:"sandbox_init_point,omitempty"`
	ExpiresAt        time.Time `json:"expires_at,omitempty"`
}

// PaymentStatusResponse is the lightweight payment polling shape
type PaymentStatusResponse struct {
	OrderNumber   string     `json:"order_number"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// TrackingResponse is the public tracking lookup shape. It deliberately
// omits customer identity.
type TrackingResponse struct {
	OrderNumber  string    `json:"order_number"`
	Status       string    `json:"status"`
	TrackingCode string    `json:"tracking_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderListFilter carries admin listing parameters
type OrderListFilter struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Search         string
	Status         *checkout.OrderStatus
	Statuses       []string
	PaymentStatus  *string
	Archived       *bool
	IncludeDeleted bool
	StartDate      *time.Time
	EndDate        *time.Time
}

// ==================== Converters ====================

// ToOrderResponse converts an order aggregate to its API response shape
func ToOrderResponse(order *checkout.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Address: DeliveryAddressInput{
			Street:       order.AddressStreet,
			Number:       order.AddressNumber,
			Complement:   order.AddressComplement,
			Neighborhood: order.AddressNeighborhood,
			City:         order.AddressCity,
			State:        order.AddressState,
			PostalCode:   order.AddressPostalCode,
		},
		Subtotal:         order.Subtotal,
		Discount:         order.DiscountAmount,
		ShippingCost:     order.ShippingCost,
		Total:            order.TotalAmount,
		Status:           order.Status.String(),
		PaymentStatus:    order.PaymentStatus,
		PaymentMethod:    order.PaymentMethod,
		Installments:     order.Installments,
		PreferenceID:     order.PreferenceID,
		TrackingCode:     order.TrackingCode,
		VerificationCode: order.VerificationCode,
		PaidAt:           order.PaidAt,
		ArchivedAt:       order.ArchivedAt,
		CreatedAt:        order.CreatedAt,
		Items:            make([]OrderItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ImageURL:      item.ImageURL,
			Size:          item.Size,
			Color:         item.Color,
			Fabric:        item.Fabric,
			PrintPosition: item.PrintPosition,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			Subtotal:      item.Subtotal,
		})
	}
	return resp
}

// ToOrderListItemResponse converts an order to its listing shape
func ToOrderListItemResponse(order *checkout.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Total:         order.TotalAmount,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus,
		TrackingCode:  order.TrackingCode,
		ItemCount:     order.ItemCount(),
		Archived:      order.IsArchived(),
		Deleted:       order.IsDeleted(),
		CreatedAt:     order.CreatedAt,
	}
}

// ToOrderListItemResponses converts a slice of orders to listing shapes
func ToOrderListItemResponses(orders []checkout.Order) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderListItemResponse(&orders[i]))
	}
	return responses
}

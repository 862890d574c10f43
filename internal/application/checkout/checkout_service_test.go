package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/payment"
	"github.com/vesti/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*checkout.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTrackingCode(ctx context.Context, trackingCode string) (*checkout.Order, error) {
	args := m.Called(ctx, trackingCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]checkout.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]checkout.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *checkout.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *checkout.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) AssignVerificationCodeOnce(ctx context.Context, orderID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, orderID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePreference(ctx context.Context, req payment.CreatePreferenceRequest) (*payment.Preference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Preference), args.Error(1)
}

func (m *MockGateway) FetchPayment(ctx context.Context, paymentID string) (*payment.PaymentDetail, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentDetail), args.Error(1)
}

func (m *MockGateway) VerifySignature(signatureHeader, requestID, resourceID string) error {
	args := m.Called(signatureHeader, requestID, resourceID)
	return args.Error(0)
}

func validCreateOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Ana Souza",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "+5511999990000",
		CustomerTaxID: "529.982.247-25",
		Address: DeliveryAddressInput{
			Street:       "Rua Augusta",
			Number:       "1500",
			Complement:   "Apto 32",
			Neighborhood: "Consolação",
			City:         "São Paulo",
			State:        "SP",
			PostalCode:   "01304-001",
		},
		Items: []CreateOrderItemInput{
			{
				ProductID:   uuid.New(),
				ProductName: "Camiseta Linho",
				Size:        "M",
				Color:       "Off-white",
				UnitPrice:   decimal.RequireFromString("50.00"),
				Quantity:    2,
			},
		},
		Discount:     decimal.RequireFromString("10.00"),
		ShippingCost: decimal.RequireFromString("19.50"),
		Total:        decimal.RequireFromString("109.50"),
	}
}

func pendingOrder(t *testing.T) *checkout.Order {
	t.Helper()
	req := validCreateOrderRequest()
	order := &checkout.Order{
		BaseEntity:        shared.NewBaseEntity(),
		OrderNumber:       "VST-20260901-0042",
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerTaxID:     "52998224725",
		AddressStreet:     req.Address.Street,
		AddressNumber:     req.Address.Number,
		AddressCity:       req.Address.City,
		AddressState:      req.Address.State,
		AddressPostalCode: "01304001",
		Subtotal:          decimal.RequireFromString("100.00"),
		DiscountAmount:    req.Discount,
		ShippingCost:      req.ShippingCost,
		TotalAmount:       req.Total,
		Status:            checkout.OrderStatusPending,
	}
	return order
}

func TestCheckoutService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending order with recomputed subtotal", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		var created *checkout.Order
		repo.On("Create", ctx, mock.AnythingOfType("*checkout.Order")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*checkout.Order)
			}).
			Return(nil).Once()

		resp, err := service.CreateOrder(ctx, validCreateOrderRequest())
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Regexp(t, `^VST-\d{8}-\d{4}$`, resp.OrderNumber)
		assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("109.50")))
		assert.Len(t, resp.Items, 1)

		require.NotNil(t, created)
		assert.Equal(t, "52998224725", created.CustomerTaxID)
		assert.Equal(t, "01304001", created.AddressPostalCode)
		assert.Equal(t, checkout.OrderStatusPending, created.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid CPF", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		req := validCreateOrderRequest()
		req.CustomerTaxID = "111.111.111-11"

		_, err := service.CreateOrder(ctx, req)
		require.Error(t, err)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects total drift beyond tolerance", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		req := validCreateOrderRequest()
		req.Total = decimal.RequireFromString("99.00")

		_, err := service.CreateOrder(ctx, req)
		var mismatch *checkout.PriceMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.True(t, mismatch.Expected.Equal(decimal.RequireFromString("109.50")))
		assert.True(t, mismatch.Submitted.Equal(decimal.RequireFromString("99.00")))
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("accepts one cent of drift", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		req := validCreateOrderRequest()
		req.Total = decimal.RequireFromString("109.51")

		_, err := service.CreateOrder(ctx, req)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("retries on order number collision", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		repo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists).Twice()
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateOrder(ctx, validCreateOrderRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.OrderNumber)
		repo.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("gives up after exhausting collision retries", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		repo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists).Times(3)

		_, err := service.CreateOrder(ctx, validCreateOrderRequest())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NUMBER_EXHAUSTED", domainErr.Code)
	})

	t.Run("propagates non-collision persistence errors", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		repo.On("Create", ctx, mock.Anything).Return(assert.AnError).Once()

		_, err := service.CreateOrder(ctx, validCreateOrderRequest())
		assert.ErrorIs(t, err, assert.AnError)
		repo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestCheckoutService_CreatePreference(t *testing.T) {
	ctx := context.Background()

	t.Run("creates preference and stores its id", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gateway := new(MockGateway)
		settings := payment.Settings{MaxInstallments: 12}
		service := NewCheckoutService(repo, gateway, settings, nil)

		order := pendingOrder(t)
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()
		gateway.On("CreatePreference", ctx, mock.MatchedBy(func(req payment.CreatePreferenceRequest) bool {
			return req.Order == order && req.Settings.MaxInstallments == 12
		})).Return(&payment.Preference{
			ID:        "pref-123",
			InitPoint: "https://gateway.test/checkout/pref-123",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}, nil).Once()
		repo.On("Update", ctx, order).Return(nil).Once()

		resp, err := service.CreatePreference(ctx, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, "pref-123", resp.PreferenceID)
		assert.Equal(t, "pref-123", order.PreferenceID)
		repo.AssertExpectations(t)
		gateway.AssertExpectations(t)
	})

	t.Run("re-quote overwrites previous preference", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gateway := new(MockGateway)
		service := NewCheckoutService(repo, gateway, payment.Settings{}, nil)

		order := pendingOrder(t)
		order.PreferenceID = "pref-old"
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()
		gateway.On("CreatePreference", ctx, mock.Anything).
			Return(&payment.Preference{ID: "pref-new"}, nil).Once()
		repo.On("Update", ctx, order).Return(nil).Once()

		_, err := service.CreatePreference(ctx, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, "pref-new", order.PreferenceID)
	})

	t.Run("rejects already paid orders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gateway := new(MockGateway)
		service := NewCheckoutService(repo, gateway, payment.Settings{}, nil)

		order := pendingOrder(t)
		require.NoError(t, order.MarkPaid())
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()

		_, err := service.CreatePreference(ctx, order.OrderNumber)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_PAID", domainErr.Code)
		gateway.AssertNotCalled(t, "CreatePreference")
	})

	t.Run("hides soft-deleted orders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		order := pendingOrder(t)
		order.SoftDelete()
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()

		_, err := service.CreatePreference(ctx, order.OrderNumber)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("propagates gateway errors", func(t *testing.T) {
		repo := new(MockOrderRepository)
		gateway := new(MockGateway)
		service := NewCheckoutService(repo, gateway, payment.Settings{}, nil)

		order := pendingOrder(t)
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()
		gateway.On("CreatePreference", ctx, mock.Anything).Return(nil, payment.ErrGatewayUnavailable).Once()

		_, err := service.CreatePreference(ctx, order.OrderNumber)
		assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
		repo.AssertNotCalled(t, "Update")
	})
}

func TestCheckoutService_Lookups(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrderByNumber returns the full order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		order := pendingOrder(t)
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()

		resp, err := service.GetOrderByNumber(ctx, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, resp.OrderNumber)
		assert.Equal(t, "Ana Souza", resp.CustomerName)
	})

	t.Run("GetPaymentStatus returns the polling view", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		order := pendingOrder(t)
		require.NoError(t, order.MarkPaid())
		order.PaymentStatus = "approved"
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil).Once()

		resp, err := service.GetPaymentStatus(ctx, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		assert.Equal(t, "approved", resp.PaymentStatus)
		assert.NotNil(t, resp.PaidAt)
	})

	t.Run("GetOrderByTrackingCode returns the public view only", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		order := pendingOrder(t)
		require.NoError(t, order.SetTrackingCode("BR123456789XX"))
		repo.On("FindByTrackingCode", ctx, "BR123456789XX").Return(order, nil).Once()

		resp, err := service.GetOrderByTrackingCode(ctx, "BR123456789XX")
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, resp.OrderNumber)
		assert.Equal(t, "BR123456789XX", resp.TrackingCode)
	})

	t.Run("soft-deleted orders are not found", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewCheckoutService(repo, new(MockGateway), payment.Settings{}, nil)

		order := pendingOrder(t)
		order.SoftDelete()
		repo.On("FindByOrderNumber", ctx, order.OrderNumber).Return(order, nil)

		_, err := service.GetOrderByNumber(ctx, order.OrderNumber)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = service.GetPaymentStatus(ctx, order.OrderNumber)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

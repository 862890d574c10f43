package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
)

// setupOrderTestDB creates an in-memory SQLite database for testing
func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT,
			customer_tax_id TEXT,
			address_street TEXT,
			address_number TEXT,
			address_complement TEXT,
			address_neighborhood TEXT,
			address_city TEXT,
			address_state TEXT,
			address_postal_code TEXT,
			subtotal NUMERIC NOT NULL DEFAULT 0,
			discount_amount NUMERIC NOT NULL DEFAULT 0,
			shipping_cost NUMERIC NOT NULL DEFAULT 0,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			preference_id TEXT,
			payment_id TEXT,
			payment_status TEXT,
			payment_method TEXT,
			installments INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			tracking_code TEXT,
			verification_code TEXT,
			paid_at DATETIME,
			archived_at DATETIME,
			deleted_at DATETIME,
			email_sent_at DATETIME,
			email_delivered_at DATETIME,
			email_opened_at DATETIME,
			email_complained_at DATETIME,
			email_failed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			image_url TEXT,
			size TEXT,
			color TEXT,
			fabric TEXT,
			print_position TEXT,
			unit_price NUMERIC NOT NULL,
			quantity INTEGER NOT NULL,
			subtotal NUMERIC NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func buildTestOrder(t *testing.T, orderNumber string) *checkout.Order {
	t.Helper()

	cpf, err := valueobject.NewCPF("52998224725")
	require.NoError(t, err)
	addr, err := valueobject.NewAddress("Rua Augusta", "1500", "Consolação", "São Paulo", "SP", "01304001")
	require.NoError(t, err)

	order, err := checkout.NewOrder(checkout.NewOrderParams{
		OrderNumber:   orderNumber,
		CustomerName:  "Ana Souza",
		CustomerEmail: "ana@example.com",
		TaxID:         cpf,
		Address:       addr,
		Subtotal:      decimal.NewFromFloat(100.00),
		ShippingCost:  decimal.NewFromFloat(10.00),
		TotalAmount:   decimal.NewFromFloat(110.00),
	})
	require.NoError(t, err)

	_, err = order.AddItem(uuid.New(), "Camiseta Linho", "", "M", "Off-white", "Linho", "",
		decimal.NewFromFloat(50.00), 2)
	require.NoError(t, err)

	return order
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := buildTestOrder(t, "VST-20260901-0001")
	require.NoError(t, repo.Create(ctx, order))

	t.Run("finds by id with items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "VST-20260901-0001", found.OrderNumber)
		assert.Equal(t, checkout.OrderStatusPending, found.Status)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Camiseta Linho", found.Items[0].ProductName)
		assert.Equal(t, 2, found.Items[0].Quantity)
	})

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, "VST-20260901-0001")
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("returns not found for unknown order", func(t *testing.T) {
		_, err := repo.FindByOrderNumber(ctx, "VST-20260901-9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_Create_NumberCollision(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := buildTestOrder(t, "VST-20260901-0042")
	require.NoError(t, repo.Create(ctx, first))

	second := buildTestOrder(t, "VST-20260901-0042")
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// The failed insert must not leave orphan items behind
	var itemCount int64
	require.NoError(t, db.Model(&checkout.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestGormOrderRepository_Update(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := buildTestOrder(t, "VST-20260901-0002")
	require.NoError(t, repo.Create(ctx, order))

	order.RecordPayment("9876", "approved", "master", 3)
	require.NoError(t, order.MarkPaid())
	require.NoError(t, repo.Update(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, checkout.OrderStatusPaid, found.Status)
	assert.Equal(t, "9876", found.PaymentID)
	assert.Equal(t, "approved", found.PaymentStatus)
	assert.Equal(t, 3, found.Installments)
	require.NotNil(t, found.PaidAt)

	t.Run("updating unknown order returns not found", func(t *testing.T) {
		ghost := buildTestOrder(t, "VST-20260901-0003")
		err := repo.Update(ctx, ghost)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_AssignVerificationCodeOnce(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := buildTestOrder(t, "VST-20260901-0004")
	require.NoError(t, repo.Create(ctx, order))

	assigned, err := repo.AssignVerificationCodeOnce(ctx, order.ID, "K7M2P9QR")
	require.NoError(t, err)
	assert.True(t, assigned)

	// A second delivery of the same webhook must not overwrite the code
	assigned, err = repo.AssignVerificationCodeOnce(ctx, order.ID, "XXXXXXXX")
	require.NoError(t, err)
	assert.False(t, assigned)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "K7M2P9QR", found.VerificationCode)
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	paid := buildTestOrder(t, "VST-20260901-0010")
	paid.RecordPayment("1", "approved", "pix", 1)
	require.NoError(t, paid.MarkPaid())
	require.NoError(t, repo.Create(ctx, paid))

	pending := buildTestOrder(t, "VST-20260901-0011")
	pending.CustomerName = "Bruno Lima"
	pending.CustomerEmail = "bruno@example.com"
	require.NoError(t, repo.Create(ctx, pending))

	deleted := buildTestOrder(t, "VST-20260901-0012")
	deleted.SoftDelete()
	require.NoError(t, repo.Create(ctx, deleted))

	t.Run("excludes soft-deleted by default", func(t *testing.T) {
		orders, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, orders, 2)

		count, err := repo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("includes soft-deleted when asked", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["include_deleted"] = true

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(checkout.OrderStatusPaid)

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "VST-20260901-0010", orders[0].OrderNumber)
	})

	t.Run("searches by customer name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "Bruno"

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "VST-20260901-0011", orders[0].OrderNumber)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 1
		filter.OrderBy = "order_number"
		filter.OrderDir = "asc"

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "VST-20260901-0010", orders[0].OrderNumber)

		filter.Page = 2
		orders, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "VST-20260901-0011", orders[0].OrderNumber)
	})
}

func TestGormOrderRepository_FindByTrackingCode(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := buildTestOrder(t, "VST-20260901-0020")
	order.RecordPayment("1", "approved", "pix", 1)
	require.NoError(t, order.MarkPaid())
	require.NoError(t, order.TransitionTo(checkout.OrderStatusProcessing))
	require.NoError(t, order.SetTrackingCode("AA123456789BR"))
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByTrackingCode(ctx, "AA123456789BR")
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, found.OrderNumber)

	_, err = repo.FindByTrackingCode(ctx, "ZZ000000000BR")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_HardDelete(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := buildTestOrder(t, "VST-20260901-0030")
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.HardDelete(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var itemCount int64
	require.NoError(t, db.Model(&checkout.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)

	t.Run("deleting unknown order returns not found", func(t *testing.T) {
		err := repo.HardDelete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

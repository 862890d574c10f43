package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared"
)

// MockRenderer implements checkoutapp.ReceiptRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderReceipt(ctx context.Context, order *checkout.Order) ([]byte, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newReceiptRouter(repo checkout.OrderRepository, renderer checkoutapp.ReceiptRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := checkoutapp.NewReceiptService(repo, renderer, nil, nil)
	h := NewReceiptHandler(service)

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func TestDownloadReceipt_PaidOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	renderer := new(MockRenderer)
	router := newReceiptRouter(repo, renderer)

	order := testPendingOrder(t)
	_ = order.MarkPaid()
	pdf := []byte("%PDF-1.7 receipt")

	repo.On("FindByOrderNumber", mock.Anything, order.OrderNumber).Return(order, nil)
	renderer.On("RenderReceipt", mock.Anything, order).Return(pdf, nil)

	w := getPath(router, "/api/v1/checkout/orders/"+order.OrderNumber+"/receipt")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="recibo-`+order.OrderNumber+`.pdf"`,
		w.Header().Get("Content-Disposition"))
	assert.Equal(t, pdf, w.Body.Bytes())
}

func TestDownloadReceipt_UnpaidOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	renderer := new(MockRenderer)
	router := newReceiptRouter(repo, renderer)

	order := testPendingOrder(t)
	repo.On("FindByOrderNumber", mock.Anything, order.OrderNumber).Return(order, nil)

	w := getPath(router, "/api/v1/checkout/orders/"+order.OrderNumber+"/receipt")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RECEIPT_UNAVAILABLE")
	renderer.AssertNotCalled(t, "RenderReceipt", mock.Anything, mock.Anything)
}

func TestDownloadReceipt_UnknownOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	renderer := new(MockRenderer)
	router := newReceiptRouter(repo, renderer)

	repo.On("FindByOrderNumber", mock.Anything, "VST-20260901-9999").Return(nil, shared.ErrNotFound)

	w := getPath(router, "/api/v1/checkout/orders/VST-20260901-9999/receipt")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadReceipt_RenderFailure(t *testing.T) {
	repo := new(MockOrderRepository)
	renderer := new(MockRenderer)
	router := newReceiptRouter(repo, renderer)

	order := testPendingOrder(t)
	_ = order.MarkPaid()
	repo.On("FindByOrderNumber", mock.Anything, order.OrderNumber).Return(order, nil)
	renderer.On("RenderReceipt", mock.Anything, order).Return(nil, assert.AnError)

	w := getPath(router, "/api/v1/checkout/orders/"+order.OrderNumber+"/receipt")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

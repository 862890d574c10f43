package checkout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vesti/backend/internal/domain/checkout"
	"github.com/vesti/backend/internal/domain/shared"
)

// receiptContentType is the MIME type for archived receipts
const receiptContentType = "application/pdf"

// ReceiptService renders PDF receipts for paid orders and optionally
// archives them in object storage
type ReceiptService struct {
	orderRepo checkout.OrderRepository
	renderer  ReceiptRenderer
	archive   ReceiptArchive // optional
	logger    *zap.Logger
}

// NewReceiptService creates a new ReceiptService. Pass a nil archive to
// disable receipt archival.
func NewReceiptService(orderRepo checkout.OrderRepository, renderer ReceiptRenderer, archive ReceiptArchive, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		orderRepo: orderRepo,
		renderer:  renderer,
		archive:   archive,
		logger:    logger,
	}
}

// GetReceipt renders the PDF receipt for a paid order. The rendered
// document is archived best effort when an archive is configured.
func (s *ReceiptService) GetReceipt(ctx context.Context, orderNumber string) ([]byte, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	if !order.IsPaid() {
		return nil, shared.NewDomainError("RECEIPT_UNAVAILABLE", "Receipt is only available for paid orders")
	}

	pdf, err := s.renderer.RenderReceipt(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt for %s: %w", orderNumber, err)
	}

	s.archiveReceipt(ctx, order, pdf)

	return pdf, nil
}

// FileName returns the download file name for an order receipt
func (s *ReceiptService) FileName(orderNumber string) string {
	return fmt.Sprintf("recibo-%s.pdf", orderNumber)
}

// archiveReceipt uploads the rendered receipt, best effort
func (s *ReceiptService) archiveReceipt(ctx context.Context, order *checkout.Order, pdf []byte) {
	if s.archive == nil {
		return
	}

	paidAt := time.Now()
	if order.PaidAt != nil {
		paidAt = *order.PaidAt
	}
	key := receiptStorageKey(order.OrderNumber, paidAt)

	exists, err := s.archive.ObjectExists(ctx, key)
	if err == nil && exists {
		return
	}

	if err := s.archive.Upload(ctx, key, pdf, receiptContentType); err != nil {
		s.logger.Warn("failed to archive receipt",
			zap.String("order_number", order.OrderNumber),
			zap.String("storage_key", key),
			zap.Error(err))
		return
	}
	s.logger.Info("receipt archived",
		zap.String("order_number", order.OrderNumber),
		zap.String("storage_key", key))
}

// receiptStorageKey builds the archive object key for an order receipt
func receiptStorageKey(orderNumber string, paidAt time.Time) string {
	return fmt.Sprintf("receipts/%s/%s.pdf", paidAt.Format("2006/01"), orderNumber)
}

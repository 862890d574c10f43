package checkout

import (
	"context"
	"time"

	"github.com/vesti/backend/internal/domain/checkout"
)

// EmailSender sends transactional email for order lifecycle events.
// Sends are best effort: a failed send is logged and never fails the caller.
type EmailSender interface {
	SendOrderConfirmation(ctx context.Context, order *checkout.Order) error
}

// ReceiptRenderer renders the PDF receipt for a paid order
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, order *checkout.Order) ([]byte, error)
}

// ReceiptArchive stores rendered receipts in object storage
type ReceiptArchive interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

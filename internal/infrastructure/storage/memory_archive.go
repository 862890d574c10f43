package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	checkoutapp "github.com/vesti/backend/internal/application/checkout"
)

// Ensure MemoryReceiptArchive implements ReceiptArchive
var _ checkoutapp.ReceiptArchive = (*MemoryReceiptArchive)(nil)

// storedObject is one archived receipt held in memory
type storedObject struct {
	data        []byte
	contentType string
	storedAt    time.Time
}

// MemoryReceiptArchive keeps archived receipts in process memory. Used in
// development and tests when no object storage is configured.
type MemoryReceiptArchive struct {
	mu      sync.RWMutex
	objects map[string]storedObject

	// BaseURL is the prefix for generated download URLs
	BaseURL string
}

// NewMemoryReceiptArchive creates a new MemoryReceiptArchive
func NewMemoryReceiptArchive() *MemoryReceiptArchive {
	return &MemoryReceiptArchive{
		objects: make(map[string]storedObject),
		BaseURL: "https://storage.invalid",
	}
}

// Upload stores a receipt in memory
func (m *MemoryReceiptArchive) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[storageKey] = storedObject{
		data:        stored,
		contentType: contentType,
		storedAt:    time.Now(),
	}
	return nil
}

// GenerateDownloadURL returns a fake download URL for a stored receipt
func (m *MemoryReceiptArchive) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	m.mu.RLock()
	_, exists := m.objects[storageKey]
	m.mu.RUnlock()
	if !exists {
		return "", time.Time{}, errors.New("object not found")
	}

	expiresAt := time.Now().Add(expiresIn)
	return m.BaseURL + "/" + storageKey, expiresAt, nil
}

// ObjectExists checks if a receipt was stored under the key
func (m *MemoryReceiptArchive) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[storageKey]
	return exists, nil
}

// Get returns a stored receipt and its content type
func (m *MemoryReceiptArchive) Get(storageKey string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, exists := m.objects[storageKey]
	if !exists {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

// Count returns the number of stored receipts
func (m *MemoryReceiptArchive) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

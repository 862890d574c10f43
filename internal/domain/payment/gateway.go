// Package payment defines the hosted-checkout gateway port used by the
// checkout flow. The storefront never talks to the provider directly; it goes
// through the Gateway interface so adapters can be swapped and mocked.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vesti/backend/internal/domain/checkout"
)

// PreferenceItem is one line in a hosted-checkout preference
type PreferenceItem struct {
	Title     string
	PictureURL string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Payer carries the customer identity attached to a preference
type Payer struct {
	Name       string
	Email      string
	Phone      string
	TaxID      string
	PostalCode string
	Street     string
	Number     string
}

// Preference is the gateway-hosted payment session created for an order
type Preference struct {
	ID          string
	InitPoint   string // redirect URL for live checkout
	SandboxInitPoint string
	ExpiresAt   time.Time
}

// PaymentDetail is a single payment fetched from the gateway
type PaymentDetail struct {
	ID                string
	Status            string // gateway status string: approved, rejected, ...
	StatusDetail      string
	ExternalReference string // equals the order number
	PaymentMethod     string
	PaymentType       string
	Installments      int
	TransactionAmount decimal.Decimal
	DateApproved      *time.Time
}

// Settings mirrors the admin-configured gateway behavior
type Settings struct {
	// ExcludedPaymentMethods lists disabled card brands / method ids
	ExcludedPaymentMethods []string
	// ExcludedPaymentTypes lists disabled payment types (e.g. "ticket")
	ExcludedPaymentTypes []string
	// MaxInstallments caps the installment count offered at checkout
	MaxInstallments int
	// StatementDescriptor is the label shown on the customer's card statement
	StatementDescriptor string
	// BinaryMode forces instant accept/reject with no in_process state
	BinaryMode bool
	// ExpirationWindow bounds how long the preference stays payable
	ExpirationWindow time.Duration
	// BackURLBase is the storefront base URL for post-payment redirects
	BackURLBase string
	// NotificationURL receives the gateway's asynchronous webhooks
	NotificationURL string
}

// CreatePreferenceRequest carries everything the adapter needs to open a
// hosted-checkout session for an order
type CreatePreferenceRequest struct {
	Order    *checkout.Order
	Settings Settings
}

// Gateway is the hosted-checkout provider port
type Gateway interface {
	// CreatePreference opens a payment session for the order and returns the
	// preference id plus redirect URLs. Fails when the provider does not
	// return an id.
	CreatePreference(ctx context.Context, req CreatePreferenceRequest) (*Preference, error)
	// FetchPayment retrieves a single payment's status, method, type and
	// installment count
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetail, error)
	// VerifySignature checks the webhook signature header against the shared
	// secret. The signatureHeader is the provider's comma-separated
	// "ts=...,v1=..." header; requestID and resourceID come from the request.
	VerifySignature(signatureHeader, requestID, resourceID string) error
}

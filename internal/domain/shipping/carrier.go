package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Carrier errors shared by all client implementations
var (
	// ErrCarrierUnavailable indicates the carrier API could not be reached
	ErrCarrierUnavailable = errors.New("shipping carrier unavailable")
	// ErrCarrierAuthFailed indicates the carrier rejected our credentials
	ErrCarrierAuthFailed = errors.New("shipping carrier authentication failed")
	// ErrNoServicesQuoted indicates every requested service failed to quote
	ErrNoServicesQuoted = errors.New("no shipping services could be quoted")
)

// RateRequest carries everything a carrier needs to price a shipment
type RateRequest struct {
	OriginCEP      string // digits only
	DestinationCEP string // digits only
	Package        Dimensions
	DeclaredValue  decimal.Decimal
	Services       []string // carrier service codes to quote
}

// Carrier is the shipping rate provider port
type Carrier interface {
	// Rates prices the shipment for each requested service. Services that
	// fail individually are skipped; the call errors only when none could
	// be quoted.
	Rates(ctx context.Context, req RateRequest) ([]Option, error)
}

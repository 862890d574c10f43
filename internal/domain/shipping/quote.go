// Package shipping holds the shipping estimation domain: package dimension
// aggregation across cart items and the quote types returned to checkout.
package shipping

import (
	"github.com/shopspring/decimal"
)

// Option is a single priced shipping choice offered to the customer
type Option struct {
	ServiceCode  string          `json:"service_code"`
	ServiceName  string          `json:"service_name"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
}

// FreeShippingPolicy tells the caller when shipping cost is waived
type FreeShippingPolicy struct {
	Enabled   bool            `json:"enabled"`
	Threshold decimal.Decimal `json:"threshold"` // order subtotal at which shipping is free
}

// Quote is the full shipping estimation result. It always carries at least
// one option (the flat-rate fallback) plus the store's free-shipping policy
// so the caller can decide whether to waive the computed cost.
type Quote struct {
	Options      []Option           `json:"options"`
	FreeShipping FreeShippingPolicy `json:"free_shipping"`
}

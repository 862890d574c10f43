package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TotalTolerance is the maximum accepted difference between the server-side
// recomputed total and the client-submitted total (one cent)
var TotalTolerance = decimal.NewFromFloat(0.01)

// PricedItem is the pricing-relevant slice of a submitted cart line
type PricedItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// PriceMismatchError is returned when the client-submitted total disagrees
// with the server-side recomputation beyond the tolerance. It carries both
// values so the storefront can show them to the customer.
type PriceMismatchError struct {
	Expected  decimal.Decimal `json:"expected"`
	Submitted decimal.Decimal `json:"submitted"`
}

// Error implements the error interface
func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("submitted total %s does not match expected total %s",
		e.Submitted.StringFixed(2), e.Expected.StringFixed(2))
}

// ComputeExpectedTotal recomputes the order total from the submitted cart:
// sum(unitPrice * quantity) - discount + shipping. Pure function, no side
// effects. Line prices arrive from the client and are only checked for
// arithmetic consistency here, not re-priced against the catalog.
func ComputeExpectedTotal(items []PricedItem, discount, shipping decimal.Decimal) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal.Sub(discount).Add(shipping)
}

// ValidateSubmittedTotal compares the client-submitted total against the
// recomputed one and returns a PriceMismatchError when they differ by more
// than the tolerance.
func ValidateSubmittedTotal(items []PricedItem, discount, shipping, submitted decimal.Decimal) error {
	expected := ComputeExpectedTotal(items, discount, shipping)
	if expected.Sub(submitted).Abs().GreaterThan(TotalTolerance) {
		return &PriceMismatchError{Expected: expected, Submitted: submitted}
	}
	return nil
}

package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
// Sort fields end up concatenated into the ORDER BY clause, so anything not on
// the whitelist must never pass through.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"order_number":    true,
	"customer_name":   true,
	"customer_email":  true,
	"status":          true,
	"subtotal":        true,
	"discount_amount": true,
	"shipping_cost":   true,
	"total_amount":    true,
	"paid_at":         true,
}

// OrderItemSortFields contains allowed sort fields for order items
var OrderItemSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"product_name": true,
	"unit_price":   true,
	"quantity":     true,
	"subtotal":     true,
}

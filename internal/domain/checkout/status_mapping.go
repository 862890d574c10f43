package checkout

// MapGatewayStatus maps a payment gateway status string to the internal order
// status it drives. The second return value is false for statuses the
// reconciler does not act on (the order is left untouched and the event is
// only logged).
func MapGatewayStatus(gatewayStatus string) (OrderStatus, bool) {
	switch gatewayStatus {
	case "approved":
		return OrderStatusPaid, true
	case "rejected", "cancelled":
		return OrderStatusFailed, true
	case "pending", "in_process":
		// The order is already pending; this is a no-op transition
		return OrderStatusPending, true
	default:
		return "", false
	}
}

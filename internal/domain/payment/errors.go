package payment

import "errors"

// Gateway errors shared by all adapter implementations
var (
	// ErrGatewayUnavailable indicates the provider could not be reached
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRequestFailed indicates the provider rejected the request
	ErrGatewayRequestFailed = errors.New("payment gateway request failed")
	// ErrPreferenceIncomplete indicates the provider answered without a preference id
	ErrPreferenceIncomplete = errors.New("payment gateway returned no preference id")
	// ErrPaymentNotFound indicates the payment id is unknown to the provider
	ErrPaymentNotFound = errors.New("payment not found at gateway")

	// ErrMissingSignature indicates the webhook carried no signature header
	ErrMissingSignature = errors.New("webhook signature header missing")
	// ErrMalformedSignature indicates the signature header could not be parsed
	ErrMalformedSignature = errors.New("webhook signature header malformed")
	// ErrSignatureMismatch indicates the signature did not match the payload
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

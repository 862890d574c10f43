package payment

import (
	"errors"
	"strings"
	"time"
)

// MercadoPagoConfig contains configuration for the Mercado Pago REST API
type MercadoPagoConfig struct {
	// BaseURL is the API base URL. Defaults to the production endpoint
	BaseURL string
	// AccessToken is the seller credential sent as a Bearer token
	AccessToken string
	// WebhookSecret is the shared secret for webhook signature verification
	WebhookSecret string
	// AllowUnsignedWebhooks accepts webhooks without a signature header.
	// Development only; config validation rejects it in production.
	AllowUnsignedWebhooks bool
	// Timeout bounds each API request
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrMPMissingAccessToken   = errors.New("mercadopago: missing access token")
	ErrMPMissingWebhookSecret = errors.New("mercadopago: missing webhook secret")
)

// Validate validates the configuration
func (c *MercadoPagoConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrMPMissingAccessToken
	}
	if c.WebhookSecret == "" && !c.AllowUnsignedWebhooks {
		return ErrMPMissingWebhookSecret
	}
	if c.BaseURL == "" {
		c.BaseURL = mercadoPagoAPIBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// Package shipping implements the carrier port against a Correios-style
// contract API: token authentication plus per-service price and deadline
// endpoints.
package shipping

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vesti/backend/internal/domain/shipping"
)

const (
	correiosAuthPath  = "/token/v1/autentica"
	correiosPricePath = "/preco/v1/nacional/%s"
	correiosDeadlinePath = "/prazo/v1/nacional/%s"

	// defaultTokenTTL keeps the token below the carrier's 24h expiry
	defaultTokenTTL = 23 * time.Hour
)

// serviceNames maps carrier service codes to customer-facing labels
var serviceNames = map[string]string{
	"03220": "SEDEX",
	"03298": "PAC",
	"SEDEX": "SEDEX",
	"PAC":   "PAC",
}

// CorreiosConfig contains configuration for the carrier client
type CorreiosConfig struct {
	BaseURL   string
	APIKey    string // basic auth user
	APISecret string // basic auth password
	TokenTTL  time.Duration
	Timeout   time.Duration
}

// CorreiosClient implements shipping.Carrier against the Correios contract API
type CorreiosClient struct {
	client *resty.Client
	config CorreiosConfig
	logger *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewCorreiosClient creates a new carrier client
func NewCorreiosClient(config CorreiosConfig, logger *zap.Logger) *CorreiosClient {
	if config.TokenTTL == 0 {
		config.TokenTTL = defaultTokenTTL
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")

	return &CorreiosClient{
		client: client,
		config: config,
		logger: logger,
	}
}

type correiosAuthResponse struct {
	Token string `json:"token"`
}

type correiosPriceResponse struct {
	Service string `json:"coProduto"`
	Price   string `json:"pcFinal"` // decimal with comma separator, e.g. "27,90"
}

type correiosDeadlineResponse struct {
	Service string `json:"coProduto"`
	Days    int    `json:"prazoEntrega"`
}

// authToken returns a cached carrier token, refreshing it when expired.
// The carrier invalidates tokens after 24 hours; the cache renews earlier.
func (c *CorreiosClient) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var authResp correiosAuthResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBasicAuth(c.config.APIKey, c.config.APISecret).
		SetResult(&authResp).
		Post(correiosAuthPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierAuthFailed, resp.StatusCode())
	}
	if authResp.Token == "" {
		return "", shipping.ErrCarrierAuthFailed
	}

	c.token = authResp.Token
	c.tokenExpiry = time.Now().Add(c.config.TokenTTL)
	c.logger.Debug("carrier token refreshed", zap.Time("expires_at", c.tokenExpiry))

	return c.token, nil
}

// InvalidateToken drops the cached token, forcing re-authentication on the
// next request
func (c *CorreiosClient) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
}

// Rates prices the shipment for each requested service. A service that fails
// is logged and skipped; the call errors only when none could be quoted.
func (c *CorreiosClient) Rates(ctx context.Context, req shipping.RateRequest) ([]shipping.Option, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]shipping.Option, 0, len(req.Services))
	for _, service := range req.Services {
		option, err := c.quoteService(ctx, token, service, req)
		if err != nil {
			c.logger.Warn("carrier service quote failed, skipping",
				zap.String("service", service),
				zap.Error(err))
			continue
		}
		options = append(options, *option)
	}

	if len(options) == 0 {
		return nil, shipping.ErrNoServicesQuoted
	}
	return options, nil
}

// quoteService fetches price and deadline for a single carrier service
func (c *CorreiosClient) quoteService(ctx context.Context, token, service string, req shipping.RateRequest) (*shipping.Option, error) {
	pkg := req.Package
	weightGrams := strconv.Itoa(int(math.Ceil(pkg.WeightKg * 1000)))

	params := map[string]string{
		"cepOrigem":  req.OriginCEP,
		"cepDestino": req.DestinationCEP,
		"psObjeto":   weightGrams,
		"altura":     strconv.Itoa(int(math.Ceil(pkg.HeightCm))),
		"largura":    strconv.Itoa(int(math.Ceil(pkg.WidthCm))),
		"comprimento": strconv.Itoa(int(math.Ceil(pkg.LengthCm))),
	}
	if req.DeclaredValue.IsPositive() {
		params["vlDeclarado"] = req.DeclaredValue.StringFixed(2)
	}

	var priceResp correiosPriceResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(params).
		SetResult(&priceResp).
		Get(fmt.Sprintf(correiosPricePath, service))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("price lookup failed: HTTP %d", resp.StatusCode())
	}

	price, err := parseCarrierPrice(priceResp.Price)
	if err != nil {
		return nil, err
	}

	var deadlineResp correiosDeadlineResponse
	resp, err = c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"cepOrigem":  req.OriginCEP,
			"cepDestino": req.DestinationCEP,
		}).
		SetResult(&deadlineResp).
		Get(fmt.Sprintf(correiosDeadlinePath, service))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("deadline lookup failed: HTTP %d", resp.StatusCode())
	}

	name := serviceNames[service]
	if name == "" {
		name = service
	}

	return &shipping.Option{
		ServiceCode:  service,
		ServiceName:  name,
		Price:        price,
		DeliveryDays: deadlineResp.Days,
	}, nil
}

// parseCarrierPrice converts the carrier's comma-decimal price ("27,90")
func parseCarrierPrice(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	price, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable carrier price %q: %w", raw, err)
	}
	return price, nil
}

// Ensure CorreiosClient implements the Carrier interface
var _ shipping.Carrier = (*CorreiosClient)(nil)

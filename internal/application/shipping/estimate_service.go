// Package shipping computes shipping estimates for the storefront: cart
// dimension aggregation, carrier quotes with caching and a flat-rate
// fallback so checkout is never blocked by a carrier outage.
package shipping

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vesti/backend/internal/domain/shared"
	"github.com/vesti/backend/internal/domain/shared/valueobject"
	"github.com/vesti/backend/internal/domain/shipping"
)

// fallbackServiceCode identifies the flat-rate option in quote responses
const fallbackServiceCode = "FLAT"

// EstimateItemInput is one cart line in an estimate request. Dimensions of
// zero fall back to the store defaults.
type EstimateItemInput struct {
	Quantity int     `json:"quantity" binding:"required,min=1"`
	WeightKg float64 `json:"weight_kg"`
	HeightCm float64 `json:"height_cm"`
	WidthCm  float64 `json:"width_cm"`
	LengthCm float64 `json:"length_cm"`
}

// EstimateRequest is a shipping estimation request
type EstimateRequest struct {
	DestinationCEP string              `json:"destination_cep" binding:"required"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Items          []EstimateItemInput `json:"items" binding:"required,min=1"`
}

// Settings carries the store's shipping policy
type Settings struct {
	OriginCEP         string
	Services          []string
	DefaultDimensions shipping.Dimensions
	FallbackRate      decimal.Decimal
	FallbackDays      int
	ExtraDays         int
	FreeThreshold     decimal.Decimal // zero disables free shipping
	QuoteTTL          time.Duration
}

// EstimateService quotes shipping for a cart. Carrier failures never fail
// the estimate; the flat-rate fallback is always available.
type EstimateService struct {
	carrier  shipping.Carrier
	cache    shipping.QuoteCache // optional
	settings Settings
	logger   *zap.Logger
}

// NewEstimateService creates a new EstimateService. Pass a nil cache to
// disable quote caching.
func NewEstimateService(carrier shipping.Carrier, cache shipping.QuoteCache, settings Settings, logger *zap.Logger) *EstimateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EstimateService{
		carrier:  carrier,
		cache:    cache,
		settings: settings,
		logger:   logger,
	}
}

// Estimate quotes shipping options for the cart. The destination CEP is
// validated; everything past validation is best effort and falls back to
// the flat rate.
func (s *EstimateService) Estimate(ctx context.Context, req EstimateRequest) (*shipping.Quote, error) {
	destination, err := valueobject.NewCEP(req.DestinationCEP)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	items := make([]shipping.PackageItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, shipping.PackageItem{
			Dimensions: shipping.Dimensions{
				WeightKg: item.WeightKg,
				HeightCm: item.HeightCm,
				WidthCm:  item.WidthCm,
				LengthCm: item.LengthCm,
			},
			Quantity: item.Quantity,
		})
	}
	pkg := shipping.AggregatePackage(items, s.settings.DefaultDimensions)

	rateReq := shipping.RateRequest{
		OriginCEP:      s.settings.OriginCEP,
		DestinationCEP: destination.String(),
		Package:        pkg,
		DeclaredValue:  req.Subtotal,
		Services:       s.settings.Services,
	}

	options := s.carrierOptions(ctx, rateReq)
	if len(options) == 0 {
		options = []shipping.Option{s.fallbackOption()}
	}

	return &shipping.Quote{
		Options: options,
		FreeShipping: shipping.FreeShippingPolicy{
			Enabled:   s.settings.FreeThreshold.IsPositive(),
			Threshold: s.settings.FreeThreshold,
		},
	}, nil
}

// carrierOptions quotes the carrier, consulting the cache first. Returns
// nil when the carrier could not quote any service.
func (s *EstimateService) carrierOptions(ctx context.Context, req shipping.RateRequest) []shipping.Option {
	key := shipping.QuoteCacheKey(req)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && len(cached) > 0 {
			return cached
		}
	}

	options, err := s.carrier.Rates(ctx, req)
	if err != nil {
		s.logger.Warn("carrier quote failed, using flat-rate fallback",
			zap.String("destination_cep", req.DestinationCEP),
			zap.Error(err))
		return nil
	}

	if s.settings.ExtraDays > 0 {
		for i := range options {
			options[i].DeliveryDays += s.settings.ExtraDays
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, options, s.settings.QuoteTTL); err != nil {
			s.logger.Debug("failed to cache shipping quote", zap.Error(err))
		}
	}

	return options
}

// fallbackOption builds the flat-rate option used when the carrier is down
func (s *EstimateService) fallbackOption() shipping.Option {
	return shipping.Option{
		ServiceCode:  fallbackServiceCode,
		ServiceName:  "Frete fixo",
		Price:        s.settings.FallbackRate,
		DeliveryDays: s.settings.FallbackDays,
	}
}

package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// QuoteCache stores carrier rate results keyed by shipment parameters so
// repeated estimates for the same destination and package skip the carrier
// API. A nil slice with a nil error means cache miss.
type QuoteCache interface {
	Get(ctx context.Context, key string) ([]Option, error)
	Set(ctx context.Context, key string, options []Option, ttl time.Duration) error
	Close() error
}

// QuoteCacheKey derives a stable cache key from the rate request. Declared
// value feeds the carrier's insurance surcharge, so it is part of the key.
func QuoteCacheKey(req RateRequest) string {
	return fmt.Sprintf("%s:%s:%.3f:%.1f:%.1f:%.1f:%s:%s",
		req.OriginCEP,
		req.DestinationCEP,
		req.Package.WeightKg,
		req.Package.HeightCm,
		req.Package.WidthCm,
		req.Package.LengthCm,
		req.DeclaredValue.StringFixed(2),
		strings.Join(req.Services, ","),
	)
}

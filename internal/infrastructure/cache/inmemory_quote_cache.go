package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vesti/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultQuoteTTL        = 10 * time.Minute
)

// InMemoryQuoteCache implements QuoteCache using in-memory storage
// This is suitable for single-instance deployments and testing
type InMemoryQuoteCache struct {
	quotes  sync.Map // map[string]*quoteEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// quoteEntry wraps cached shipping options with expiration time
type quoteEntry struct {
	options   []shipping.Option
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *quoteEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryQuoteCacheOption is a functional option for configuring the cache
type InMemoryQuoteCacheOption func(*InMemoryQuoteCache)

// WithQuoteTTL sets the default TTL used when Set is called with a zero TTL
func WithQuoteTTL(ttl time.Duration) InMemoryQuoteCacheOption {
	return func(c *InMemoryQuoteCache) {
		c.ttl = ttl
	}
}

// WithQuoteCacheLogger sets the logger for the cache
func WithQuoteCacheLogger(logger *zap.Logger) InMemoryQuoteCacheOption {
	return func(c *InMemoryQuoteCache) {
		c.logger = logger
	}
}

// NewInMemoryQuoteCache creates a new in-memory shipping quote cache
func NewInMemoryQuoteCache(opts ...InMemoryQuoteCacheOption) *InMemoryQuoteCache {
	cache := &InMemoryQuoteCache{
		ttl:    defaultQuoteTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves cached shipping options. A nil slice means cache miss.
func (c *InMemoryQuoteCache) Get(ctx context.Context, key string) ([]shipping.Option, error) {
	if value, ok := c.quotes.Load(key); ok {
		entry := value.(*quoteEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("cache hit for shipping quote", zap.String("key", key))
			return entry.options, nil
		}
		c.quotes.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("cache miss for shipping quote", zap.String("key", key))
	return nil, nil
}

// Set stores shipping options in cache
func (c *InMemoryQuoteCache) Set(ctx context.Context, key string, options []shipping.Option, ttl time.Duration) error {
	if len(options) == 0 {
		return nil
	}

	if ttl == 0 {
		ttl = c.ttl
	}

	c.quotes.Store(key, &quoteEntry{
		options:   options,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("cached shipping quote",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryQuoteCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryQuoteCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryQuoteCache) Count() int {
	count := 0
	c.quotes.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryQuoteCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryQuoteCache) doCleanup() {
	var removed int

	c.quotes.Range(func(key, value any) bool {
		entry := value.(*quoteEntry)
		if entry.isExpired() {
			c.quotes.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("cleaned up expired quote cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryQuoteCache implements QuoteCache
var _ shipping.QuoteCache = (*InMemoryQuoteCache)(nil)

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vesti/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// RedisQuoteCache implements QuoteCache using Redis
// This is suitable for distributed deployments where multiple instances
// should share carrier quote results
type RedisQuoteCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisQuoteCacheOption is a functional option for configuring the cache
type RedisQuoteCacheOption func(*RedisQuoteCache)

// WithRedisQuoteTTL sets the default TTL used when Set is called with a zero TTL
func WithRedisQuoteTTL(ttl time.Duration) RedisQuoteCacheOption {
	return func(c *RedisQuoteCache) {
		c.ttl = ttl
	}
}

// WithRedisQuoteCacheLogger sets the logger for the cache
func WithRedisQuoteCacheLogger(logger *zap.Logger) RedisQuoteCacheOption {
	return func(c *RedisQuoteCache) {
		c.logger = logger
	}
}

// NewRedisQuoteCache creates a new Redis-based shipping quote cache
func NewRedisQuoteCache(cfg RedisConfig, opts ...RedisQuoteCacheOption) (*RedisQuoteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisQuoteCache{
		client:     client,
		ownsClient: true,
		ttl:        defaultQuoteTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisQuoteCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisQuoteCacheWithClient(client *redis.Client, opts ...RedisQuoteCacheOption) *RedisQuoteCache {
	cache := &RedisQuoteCache{
		client:     client,
		ownsClient: false,
		ttl:        defaultQuoteTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// quoteCacheKey generates the Redis key for a quote
func (c *RedisQuoteCache) quoteCacheKey(key string) string {
	return fmt.Sprintf("shipping:quote:%s", key)
}

// Get retrieves cached shipping options. A nil slice means cache miss.
func (c *RedisQuoteCache) Get(ctx context.Context, key string) ([]shipping.Option, error) {
	cacheKey := c.quoteCacheKey(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss for shipping quote", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("failed to get shipping quote from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get quote from cache: %w", err)
	}

	var options []shipping.Option
	if err := json.Unmarshal(data, &options); err != nil {
		c.logger.Error("failed to unmarshal cached shipping quote",
			zap.String("key", key),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	c.logger.Debug("cache hit for shipping quote", zap.String("key", key))
	return options, nil
}

// Set stores shipping options in cache
func (c *RedisQuoteCache) Set(ctx context.Context, key string, options []shipping.Option, ttl time.Duration) error {
	if len(options) == 0 {
		return nil
	}

	if ttl == 0 {
		ttl = c.ttl
	}

	cacheKey := c.quoteCacheKey(key)

	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		c.logger.Error("failed to set shipping quote in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set quote in cache: %w", err)
	}

	c.logger.Debug("cached shipping quote",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisQuoteCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisQuoteCache implements QuoteCache
var _ shipping.QuoteCache = (*RedisQuoteCache)(nil)

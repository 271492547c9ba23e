// Package cache is an optional redis snapshot cache for assembled deal
// views. Correctness never depends on it: every operation degrades to a
// miss on error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/AudioList/deals-api/pkg/metrics"
	"github.com/AudioList/deals-api/pkg/models"
	"github.com/AudioList/deals-api/pkg/tracing"
)

const keyPrefix = "deals:view:"

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type DealCache struct {
	client *redis.Client
	ttl    time.Duration
	logger ectologger.Logger
}

// New connects to redis and verifies the connection.
func New(cfg Config, logger ectologger.Logger) (*DealCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &DealCache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

// Get returns the cached view for a product, or ok=false on miss or any
// redis/decoding failure.
func (c *DealCache) Get(ctx context.Context, productID string) (*models.DealView, bool) {
	ctx, span := tracing.StartSpan(ctx, "cache.DealCache.Get")
	defer span.End()

	raw, err := c.client.Get(ctx, keyPrefix+productID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"product_id": productID,
			}).Warn("failed to read deal view cache")
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var view models.DealView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": productID,
		}).Warn("failed to decode cached deal view")
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &view, true
}

// Set stores a view snapshot with the configured TTL. Failures are logged
// and swallowed.
func (c *DealCache) Set(ctx context.Context, productID string, view *models.DealView) {
	ctx, span := tracing.StartSpan(ctx, "cache.DealCache.Set")
	defer span.End()

	raw, err := json.Marshal(view)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("failed to encode deal view for cache")
		return
	}
	if err := c.client.Set(ctx, keyPrefix+productID, raw, c.ttl).Err(); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": productID,
		}).Warn("failed to write deal view cache")
	}
}

// Invalidate drops a product's cached view, e.g. after a new price
// observation lands.
func (c *DealCache) Invalidate(ctx context.Context, productID string) {
	ctx, span := tracing.StartSpan(ctx, "cache.DealCache.Invalidate")
	defer span.End()

	if err := c.client.Del(ctx, keyPrefix+productID).Err(); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": productID,
		}).Warn("failed to invalidate deal view cache")
	}
}

// Ping reports redis connectivity for health checks.
func (c *DealCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *DealCache) Close() error {
	return c.client.Close()
}

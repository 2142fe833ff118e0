// Package cache provides Redis-backed read-through caches for catalog
// showcase queries that are expensive to compute on every page load.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partsunlimited/storefront/internal/domain"
)

const (
	topSellersKeyPrefix  = "showcase:top_sellers:"
	newArrivalsKeyPrefix = "showcase:new_arrivals:"
	latestProductKey     = "showcase:latest"
)

// ShowcaseReader is the slice of the product repository the cache sits in
// front of.
type ShowcaseReader interface {
	TopSellers(ctx context.Context, limit int) ([]domain.Product, error)
	NewArrivals(ctx context.Context, limit int) ([]domain.Product, error)
	Latest(ctx context.Context) (*domain.Product, error)
}

// ShowcaseCache serves showcase queries from Redis, falling back to the
// underlying reader on a miss and repopulating the cache with a TTL.
// Cache failures are logged and degrade to the reader rather than erroring.
type ShowcaseCache struct {
	reader ShowcaseReader
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewShowcaseCache creates a showcase cache with the given entry TTL.
func NewShowcaseCache(reader ShowcaseReader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *ShowcaseCache {
	return &ShowcaseCache{
		reader: reader,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// TopSellers returns the cached top sellers list, computing it on a miss.
func (c *ShowcaseCache) TopSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	key := topSellersKeyPrefix + strconv.Itoa(limit)
	return c.products(ctx, key, func(ctx context.Context) ([]domain.Product, error) {
		return c.reader.TopSellers(ctx, limit)
	})
}

// NewArrivals returns the cached new arrivals list, computing it on a miss.
func (c *ShowcaseCache) NewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	key := newArrivalsKeyPrefix + strconv.Itoa(limit)
	return c.products(ctx, key, func(ctx context.Context) ([]domain.Product, error) {
		return c.reader.NewArrivals(ctx, limit)
	})
}

// Latest returns the cached newest product, computing it on a miss.
func (c *ShowcaseCache) Latest(ctx context.Context) (*domain.Product, error) {
	data, err := c.client.Get(ctx, latestProductKey).Bytes()
	if err == nil {
		var p domain.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.logger.Warn("corrupt showcase cache entry", slog.String("key", latestProductKey))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("showcase cache read failed", slog.String("key", latestProductKey), slog.String("error", err.Error()))
	}

	p, err := c.reader.Latest(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, latestProductKey, p)
	return p, nil
}

func (c *ShowcaseCache) products(ctx context.Context, key string, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		c.logger.Warn("corrupt showcase cache entry", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("showcase cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	products, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, products)
	return products, nil
}

func (c *ShowcaseCache) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("marshal showcase cache entry failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("showcase cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Invalidate drops all showcase entries. Called after catalog mutations so
// showcases reflect changes within one page load instead of one TTL.
func (c *ShowcaseCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "showcase:*", 0).Iterator()
	keys := make([]string, 0, 4)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan showcase keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete showcase keys: %w", err)
	}
	return nil
}

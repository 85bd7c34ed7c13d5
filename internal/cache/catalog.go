// Package cache decorates the catalog repository with a Redis
// read-through layer. The catalog changes rarely and is read on every
// cart operation, so short-TTL caching removes most database reads.
package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/buanay/pos/internal/domain/catalog"
)

const (
	productsKey   = "catalog:products"
	categoriesKey = "catalog:categories"
)

var _ catalog.Repository = (*CatalogCache)(nil)

// CatalogCache is a read-through cache in front of a catalog.Repository.
// Cache failures are logged and fall back to the source; they never
// surface to callers.
type CatalogCache struct {
	source catalog.Repository
	client *redis.Client
	ttl    time.Duration
	lg     *zap.Logger
}

// NewCatalogCache wraps source with a Redis cache using the given TTL.
func NewCatalogCache(source catalog.Repository, client *redis.Client, ttl time.Duration, lg *zap.Logger) *CatalogCache {
	return &CatalogCache{
		source: source,
		client: client,
		ttl:    ttl,
		lg:     lg,
	}
}

// Ping checks Redis connectivity.
func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// List returns all products, from cache when possible.
func (c *CatalogCache) List(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if c.get(ctx, productsKey, &products) {
		return products, nil
	}

	products, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, productsKey, products)
	return products, nil
}

// GetByID returns one product. Lookups go through the cached product
// list so a warm cache serves item resolution during checkout too.
func (c *CatalogCache) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

// Categories returns all categories, from cache when possible.
func (c *CatalogCache) Categories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if c.get(ctx, categoriesKey, &categories) {
		return categories, nil
	}

	categories, err := c.source.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, categoriesKey, categories)
	return categories, nil
}

// Invalidate drops the cached catalog. Called after seeding.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, productsKey, categoriesKey).Err(); err != nil {
		c.lg.Warn("cache invalidate failed", zap.Error(err))
	}
}

func (c *CatalogCache) get(ctx context.Context, key string, dst any) bool {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.lg.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		c.lg.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.lg.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.lg.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

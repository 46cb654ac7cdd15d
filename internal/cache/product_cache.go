package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/models"
	"github.com/quickshop/storefront/pkg/logger"
	"github.com/quickshop/storefront/pkg/metrics"
)

// ProductCache is the public cache surface for the catalog snapshot. Reads
// are fail-open: any internal fault is logged and reported as a miss, so the
// cache can never make an otherwise-successful catalog fetch fail.
type ProductCache struct {
	store     *ProductStore
	freshness time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewProductCache builds the facade over a structured store adapter.
func NewProductCache(store *ProductStore, freshness time.Duration) (*ProductCache, error) {
	if store == nil {
		return nil, fmt.Errorf("cache: product cache requires a store")
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &ProductCache{
		store:     store,
		freshness: freshness,
		now:       time.Now,
		log:       logger.WithModule("cache.products"),
	}, nil
}

// Get returns the full cached snapshot, or a miss when the snapshot is
// absent, stale, or torn. A stale snapshot is evicted as a side effect.
func (c *ProductCache) Get(ctx context.Context) ([]models.Product, bool) {
	return collapse(c.lookup(ctx), c.log, "products")
}

func (c *ProductCache) lookup(ctx context.Context) result[[]models.Product] {
	meta, err := c.store.Meta(ctx)
	if err != nil {
		return fault[[]models.Product](err)
	}
	if meta == nil {
		return miss[[]models.Product]()
	}

	if c.now().Sub(meta.Timestamp) > c.freshness {
		metrics.CacheEvictions.WithLabelValues("products", "expired").Inc()
		if err := c.store.Clear(ctx); err != nil {
			return fault[[]models.Product](err)
		}
		return miss[[]models.Product]()
	}

	count, err := c.store.Count(ctx)
	if err != nil {
		return fault[[]models.Product](err)
	}
	if count != meta.Count {
		// Torn snapshot: the meta row disagrees with the stored records.
		return miss[[]models.Product]()
	}

	products, ok, err := c.store.GetAll(ctx)
	if err != nil {
		return fault[[]models.Product](err)
	}
	if !ok {
		return miss[[]models.Product]()
	}

	hash, err := Fingerprint(products)
	if err != nil || hash != meta.CollectionHash {
		return miss[[]models.Product]()
	}

	return hit(products)
}

// Set replaces the snapshot wholesale. Only full catalog fetches call this;
// individual product fetches never seed the cache.
func (c *ProductCache) Set(ctx context.Context, products []models.Product) error {
	if err := c.store.ReplaceAll(ctx, products); err != nil {
		c.log.Warn("snapshot write failed", zap.Error(err))
		return err
	}
	return nil
}

// GetByID performs a point lookup against the snapshot. Unknown, expired, or
// corrupted records report a miss.
func (c *ProductCache) GetByID(ctx context.Context, id int64) (*models.Product, bool) {
	product, err := c.store.GetByID(ctx, id)
	switch {
	case err != nil:
		return collapse(fault[*models.Product](err), c.log, "products")
	case product == nil:
		return collapse(miss[*models.Product](), c.log, "products")
	default:
		return collapse(hit(product), c.log, "products")
	}
}

// IsExpired reports whether the snapshot is missing or older than the
// freshness window, without loading the records.
func (c *ProductCache) IsExpired(ctx context.Context) bool {
	meta, err := c.store.Meta(ctx)
	if err != nil {
		c.log.Warn("meta read failed", zap.Error(err))
		return true
	}
	if meta == nil {
		return true
	}
	return c.now().Sub(meta.Timestamp) > c.freshness
}

// Clear evicts the snapshot and its metadata.
func (c *ProductCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/quickshop/storefront/internal/models"
	"github.com/quickshop/storefront/pkg/metrics"
)

const metaRowID = 1

// ProductStore is the structured adapter over the local catalog snapshot.
// It returns raw errors; the ProductCache facade applies the fail-open
// policy on top of it.
type ProductStore struct {
	db        *gorm.DB
	freshness time.Duration
	now       func() time.Time
}

// NewProductStore constructs the adapter. A non-positive freshness falls back
// to DefaultFreshness.
func NewProductStore(db *gorm.DB, freshness time.Duration) (*ProductStore, error) {
	if db == nil {
		return nil, errors.New("cache: product store requires a database handle")
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &ProductStore{db: db, freshness: freshness, now: time.Now}, nil
}

// ReplaceAll swaps the whole catalog snapshot in a single transaction, so
// concurrent readers observe either the previous snapshot or the new one,
// never a mix.
func (s *ProductStore) ReplaceAll(ctx context.Context, products []models.Product) error {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now()

	// GetAll reads rows back ordered by id, so the collection hash must be
	// computed over the same ordering or a caller-ordered snapshot would
	// never verify.
	ordered := make([]models.Product, len(products))
	copy(ordered, products)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	rows := make([]models.CachedProduct, 0, len(ordered))
	for _, product := range ordered {
		payload, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("cache: encode product %d: %w", product.ID, err)
		}
		hash, err := Fingerprint(product)
		if err != nil {
			return fmt.Errorf("cache: fingerprint product %d: %w", product.ID, err)
		}
		rows = append(rows, models.CachedProduct{
			ID:            product.ID,
			Payload:       payload,
			CachedAt:      now,
			IntegrityHash: hash,
		})
	}

	collectionHash, err := Fingerprint(ordered)
	if err != nil {
		return fmt.Errorf("cache: fingerprint collection: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CachedProduct{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		meta := models.ProductCacheMeta{
			ID:             metaRowID,
			Timestamp:      now,
			Count:          int64(len(rows)),
			CollectionHash: collectionHash,
		}
		if err := tx.Where("id = ?", metaRowID).Delete(&models.ProductCacheMeta{}).Error; err != nil {
			return err
		}
		return tx.Create(&meta).Error
	})
}

// GetAll returns every stored record with cache metadata stripped. The second
// return value is false when the snapshot is empty or uninitialised.
func (s *ProductStore) GetAll(ctx context.Context) ([]models.Product, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var rows []models.CachedProduct
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		var product models.Product
		if err := json.Unmarshal(row.Payload, &product); err != nil {
			return nil, false, fmt.Errorf("cache: decode product %d: %w", row.ID, err)
		}
		products = append(products, product)
	}
	return products, true, nil
}

// GetByID performs a point lookup with a record-level age check independent
// of the collection metadata. Expired or corrupted records are evicted as a
// side effect.
func (s *ProductStore) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var row models.CachedProduct
	err := s.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.now().Sub(row.CachedAt) > s.freshness {
		metrics.CacheEvictions.WithLabelValues("products", "expired").Inc()
		_ = s.db.WithContext(ctx).Delete(&models.CachedProduct{}, row.ID).Error
		return nil, nil
	}

	var product models.Product
	if err := json.Unmarshal(row.Payload, &product); err != nil {
		metrics.CacheEvictions.WithLabelValues("products", "integrity").Inc()
		_ = s.db.WithContext(ctx).Delete(&models.CachedProduct{}, row.ID).Error
		return nil, nil
	}

	hash, err := Fingerprint(product)
	if err != nil || hash != row.IntegrityHash {
		metrics.CacheEvictions.WithLabelValues("products", "integrity").Inc()
		_ = s.db.WithContext(ctx).Delete(&models.CachedProduct{}, row.ID).Error
		return nil, nil
	}

	return &product, nil
}

// Meta returns the singleton snapshot descriptor, or nil when no snapshot has
// been written yet.
func (s *ProductStore) Meta(ctx context.Context) (*models.ProductCacheMeta, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var meta models.ProductCacheMeta
	err := s.db.WithContext(ctx).Take(&meta, "id = ?", metaRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// Count reports the number of records currently in the snapshot.
func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CachedProduct{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Clear removes all records and the collection metadata.
func (s *ProductStore) Clear(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CachedProduct{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", metaRowID).Delete(&models.ProductCacheMeta{}).Error
	})
}

package database

import (
	"gorm.io/gorm"

	"github.com/quickshop/storefront/internal/models"
)

// AutoMigrate creates or updates the schema for the local cache tables.
// The cache subsystem is the only writer of these tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CachedProduct{},
		&models.ProductCacheMeta{},
		&models.CacheEntry{},
	)
}

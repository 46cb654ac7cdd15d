package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a catalog record as served by the remote backend.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"product_name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Media       []string `json:"media,omitempty"`
}

// CachedProduct is one row of the local catalog snapshot. The payload is the
// product's own JSON fields; CachedAt and IntegrityHash are cache metadata and
// are stripped before records leave the cache subsystem.
type CachedProduct struct {
	ID            int64          `gorm:"primaryKey;autoIncrement:false"`
	Payload       datatypes.JSON `gorm:"type:json"`
	CachedAt      time.Time      `gorm:"index"`
	IntegrityHash string         `gorm:"size:32"`
}

// ProductCacheMeta is the singleton snapshot descriptor. Count must equal the
// number of CachedProduct rows whenever the snapshot is considered fresh; a
// mismatch marks the cache as torn and it is treated as a miss.
type ProductCacheMeta struct {
	ID             uint      `gorm:"primaryKey"`
	Timestamp      time.Time `gorm:"index"`
	Count          int64
	CollectionHash string `gorm:"size:32"`
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quickshop/storefront/pkg/response"
)

// HealthHandler reports process and cache-store health.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health verifies the local cache store is reachable.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	cacheStore := "ok"

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
			cacheStore = "unavailable"
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":      status,
		"cache_store": cacheStore,
	})
}

package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/quickshop/storefront/internal/app"
	"github.com/quickshop/storefront/internal/client"
	"github.com/quickshop/storefront/internal/handlers"
	"github.com/quickshop/storefront/internal/middleware"
)

// NewRouter assembles the local API surface fronting the remote backend.
func NewRouter(db *gorm.DB, apiClient *client.Client, cfg *app.Config) (*gin.Engine, error) {
	if apiClient == nil {
		return nil, errors.New("api: client is required")
	}
	if cfg == nil {
		return nil, errors.New("api: config is required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	productHandler, err := handlers.NewProductHandler(apiClient)
	if err != nil {
		return nil, err
	}
	accountHandler, err := handlers.NewAccountHandler(apiClient)
	if err != nil {
		return nil, err
	}
	cartHandler, err := handlers.NewCartHandler(apiClient)
	if err != nil {
		return nil, err
	}
	orderHandler, err := handlers.NewOrderHandler(apiClient)
	if err != nil {
		return nil, err
	}

	apiGroup := router.Group("/api")
	registerProductRoutes(apiGroup, productHandler)
	registerAccountRoutes(apiGroup, accountHandler)
	registerCartRoutes(apiGroup, cartHandler)
	registerOrderRoutes(apiGroup, orderHandler)

	if cfg.Monitoring.Health.Enabled {
		healthHandler := handlers.NewHealthHandler(db)
		router.GET("/health", healthHandler.Health)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		router.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	return router, nil
}

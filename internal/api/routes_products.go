package api

import "github.com/gin-gonic/gin"

import "github.com/quickshop/storefront/internal/handlers"

func registerProductRoutes(r *gin.RouterGroup, handler *handlers.ProductHandler) {
	if r == nil || handler == nil {
		return
	}

	products := r.Group("/products")
	{
		products.GET("", handler.List)
		products.GET(":id", handler.Get)
		products.POST("", handler.Create)
		products.PUT(":id", handler.Update)
		products.DELETE(":id", handler.Delete)
	}
}

package api

import "github.com/gin-gonic/gin"

import "github.com/quickshop/storefront/internal/handlers"

func registerCartRoutes(r *gin.RouterGroup, handler *handlers.CartHandler) {
	if r == nil || handler == nil {
		return
	}

	cart := r.Group("/cart")
	{
		cart.GET("", handler.Get)
		cart.POST("/add", handler.Add)
		cart.PUT("/item/:id", handler.UpdateItem)
		cart.DELETE("/item/:id", handler.RemoveItem)
		cart.POST("/checkout", handler.Checkout)
	}
}

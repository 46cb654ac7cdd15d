package api

import "github.com/gin-gonic/gin"

import "github.com/quickshop/storefront/internal/handlers"

func registerOrderRoutes(r *gin.RouterGroup, handler *handlers.OrderHandler) {
	if r == nil || handler == nil {
		return
	}

	orders := r.Group("/orders")
	{
		orders.GET("", handler.List)
		orders.GET("/:id", handler.Get)
		orders.PATCH("/:id/status", handler.UpdateStatus)
		orders.POST("/:id/pay", handler.Pay)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/orders", handler.ListAll)
		admin.GET("/orders/:id", handler.AdminGet)
		admin.PATCH("/orders/:id/status", handler.AdminUpdateStatus)
		admin.GET("/payments", handler.ListPayments)
	}
}

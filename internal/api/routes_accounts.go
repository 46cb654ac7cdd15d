package api

import "github.com/gin-gonic/gin"

import "github.com/quickshop/storefront/internal/handlers"

func registerAccountRoutes(r *gin.RouterGroup, handler *handlers.AccountHandler) {
	if r == nil || handler == nil {
		return
	}

	accounts := r.Group("/accounts")
	{
		accounts.POST("/register", handler.Register)
		accounts.POST("/login", handler.Login)
		accounts.POST("/logout", handler.Logout)
		accounts.GET("/me", handler.Me)
		accounts.GET("/addresses", handler.Addresses)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/users", handler.ListUsers)
		admin.GET("/users/:id", handler.GetUser)
		admin.PATCH("/users/:id", handler.UpdateUser)
		admin.DELETE("/users/:id", handler.DeleteUser)
		admin.GET("/analytics", handler.Analytics)
	}
}

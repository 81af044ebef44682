package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/souqly/storefront/internal/handlers"
	"github.com/souqly/storefront/internal/metrics"
	"github.com/souqly/storefront/internal/service"
)

type Deps struct {
	AuthHandler         *handlers.AuthHandler
	ProductHandler      *handlers.ProductHandler
	CategoryHandler     *handlers.CategoryHandler
	OrderHandler        *handlers.OrderHandler
	NotificationHandler *handlers.NotificationHandler
	UploadHandler       *handlers.UploadHandler
	SearchHandler       *handlers.SearchHandler
	TokenService        *service.TokenService
	UploadDir           string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", metrics.Handler())

	e.Static("/uploads", d.UploadDir)

	api := e.Group("/api")

	requireAuth := d.TokenService.AutoRefreshMiddleware
	requireAdmin := d.TokenService.AutoRefreshMiddlewareAdmin

	users := api.Group("/users")
	users.POST("", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/logout", d.AuthHandler.Logout)
	users.GET("/profile", d.AuthHandler.GetProfile, requireAuth)
	users.PUT("/profile", d.AuthHandler.UpdateProfile, requireAuth)
	users.GET("", d.AuthHandler.GetUsers, requireAdmin)
	users.PUT("/:id", d.AuthHandler.UpdateUser, requireAdmin)
	users.DELETE("/:id", d.AuthHandler.DeleteUser, requireAdmin)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, requireAdmin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, requireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, requireAdmin)
	products.POST("/:id/reviews", d.ProductHandler.CreateReview, requireAuth)
	products.DELETE("/:productId/reviews/:reviewId", d.ProductHandler.DeleteReview, requireAuth)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.POST("", d.CategoryHandler.CreateCategory, requireAdmin)

	notifications := api.Group("/notifications", requireAuth)
	notifications.GET("", d.NotificationHandler.GetMyNotifications)
	notifications.PUT("/:id", d.NotificationHandler.MarkAsRead)

	// Auth middlewares rotate tokens, so each route gets exactly one.
	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, requireAuth)
	orders.GET("/my-orders", d.OrderHandler.GetMyOrders, requireAuth)
	orders.GET("", d.OrderHandler.GetOrders, requireAdmin)
	orders.GET("/:id", d.OrderHandler.GetOrder, requireAuth)
	orders.PUT("/:id/deliver", d.OrderHandler.MarkDelivered, requireAdmin)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder, requireAuth)

	api.POST("/upload", d.UploadHandler.Upload, requireAdmin)
	api.GET("/search", d.SearchHandler.Search)
}

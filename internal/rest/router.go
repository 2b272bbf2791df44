package rest

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/catalog"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/user"

	"github.com/gin-gonic/gin"
)

type Services struct {
	User    user.Service
	Catalog catalog.Service
	Cart    cart.Service
	Order   order.Service
}

func NewRouter(svcs Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.LoggingMiddleware())
	r.Use(middleware.Auth())
	r.Use(middleware.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/debug/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Snapshot())
	})

	users := NewUserHandler(svcs.User)
	products := NewCatalogHandler(svcs.Catalog)
	carts := NewCartHandler(svcs.Cart)
	orders := NewOrderHandler(svcs.Order)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", users.Register)
		auth.POST("/login", users.Login)
		auth.GET("/verify-email/:token", users.VerifyEmail)
		auth.POST("/password-reset", users.RequestPasswordReset)
		auth.POST("/password-reset/confirm", users.ConfirmPasswordReset)
		auth.POST("/password", middleware.RequireAuth(), users.ChangePassword)
	}

	me := api.Group("/me", middleware.RequireAuth())
	{
		me.GET("", users.Me)
		me.GET("/profile", users.GetProfile)
		me.PATCH("/profile", users.UpdateProfile)
		me.GET("/wishlist", products.ListWishlist)
	}

	catalogGroup := api.Group("/products")
	{
		catalogGroup.GET("", products.ListProducts)
		catalogGroup.GET("/:id", products.GetProduct)
		catalogGroup.GET("/:id/reviews", products.ListReviews)

		catalogGroup.POST("", middleware.RequireAuth(), products.CreateProduct)
		catalogGroup.PUT("/:id", middleware.RequireAuth(), products.UpdateProduct)
		catalogGroup.DELETE("/:id", middleware.RequireAuth(), products.DeleteProduct)
		catalogGroup.PUT("/:id/tags", middleware.RequireAuth(), products.TagProduct)
		catalogGroup.POST("/:id/reviews", middleware.RequireAuth(), products.CreateReview)
		catalogGroup.POST("/:id/wishlist", middleware.RequireAuth(), products.ToggleWishlist)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", products.ListCategories)
		categories.GET("/:id", products.GetCategory)
		categories.POST("", middleware.RequireAuth(), products.CreateCategory)
		categories.PUT("/:id", middleware.RequireAuth(), products.UpdateCategory)
		categories.DELETE("/:id", middleware.RequireAuth(), products.DeleteCategory)
	}

	brands := api.Group("/brands")
	{
		brands.GET("", products.ListBrands)
		brands.POST("", middleware.RequireAuth(), products.CreateBrand)
		brands.PUT("/:id", middleware.RequireAuth(), products.UpdateBrand)
		brands.DELETE("/:id", middleware.RequireAuth(), products.DeleteBrand)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", products.ListTags)
		tags.POST("", middleware.RequireAuth(), products.CreateTag)
	}

	// Cart works for guests (X-Session-Key) and authenticated users alike.
	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", carts.GetCart)
		cartGroup.POST("/items", carts.AddItem)
		cartGroup.PUT("/items/:id", carts.UpdateItem)
		cartGroup.DELETE("/items/:id", carts.RemoveItem)
		cartGroup.DELETE("", carts.ClearCart)
	}

	orderGroup := api.Group("/orders", middleware.RequireAuth())
	{
		orderGroup.POST("", orders.CreateOrder)
		orderGroup.GET("", orders.ListOrders)
		orderGroup.GET("/stats", orders.GetStats)
		orderGroup.GET("/:id", orders.GetOrder)
		orderGroup.PATCH("/:id/status", orders.UpdateStatus)
		orderGroup.PATCH("/:id/payment", orders.SetPaymentStatus)
	}

	addresses := api.Group("/addresses", middleware.RequireAuth())
	{
		addresses.POST("", orders.CreateAddress)
		addresses.GET("", orders.ListAddresses)
		addresses.GET("/:id", orders.GetAddress)
		addresses.PUT("/:id", orders.UpdateAddress)
		addresses.DELETE("/:id", orders.DeleteAddress)
	}

	return r
}

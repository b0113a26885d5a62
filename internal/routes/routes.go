package routes

import (
	"net/http"

	"github.com/cartly/cartly-golang/internal/handlers"
	"github.com/cartly/cartly-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origin to call the API.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, corsOrigin string) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware(corsOrigin))

	// Uploaded product images are served straight from disk.
	router.Static("/uploads", h.UploadDir)

	api := router.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// --- Auth ---
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/token/refresh", h.RefreshToken)
			authGroup.POST("/token/verify", h.VerifyToken)

			protected := authGroup.Group("/", middleware.AuthMiddleware(h.Tokens))
			{
				protected.POST("/logout", h.Logout)
				protected.GET("/profile", h.GetProfile)
				protected.PUT("/profile", h.UpdateProfile)
				protected.PUT("/change-password", h.ChangePassword)
			}
		}

		// --- Categories (public, read-only) ---
		api.GET("/categories", h.GetAllCategories)
		api.GET("/categories/:slug", h.GetCategory)
		api.GET("/categories/:slug/products", h.GetCategoryProducts)

		// --- Products ---
		api.GET("/products", h.ListProducts)
		api.GET("/products/featured", h.FeaturedProducts)
		api.GET("/products/:slug", h.GetProduct)

		productsAuth := api.Group("/products", middleware.AuthMiddleware(h.Tokens))
		{
			productsAuth.POST("", h.CreateProduct)
			productsAuth.GET("/my_products", h.MyProducts)
			productsAuth.PUT("/:slug", h.UpdateProduct)
			productsAuth.DELETE("/:slug", h.DeleteProduct)
			productsAuth.POST("/:slug/add_to_cart", h.ProductAddToCart)
		}

		// --- Cart ---
		cart := api.Group("/cart", middleware.AuthMiddleware(h.Tokens))
		{
			cart.GET("", h.GetCart)
			cart.POST("", h.AddToCart)
			cart.PATCH("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.RemoveCartItem)
			cart.DELETE("/clear", h.ClearCart)
		}

		// --- Orders ---
		orders := api.Group("/orders", middleware.AuthMiddleware(h.Tokens))
		{
			orders.POST("", h.PlaceOrder)
			orders.GET("", h.ListOrders)
			orders.GET("/:id", h.GetOrder)
			orders.POST("/:id/cancel", h.CancelOrder)
			orders.PATCH("/:id/update_status", middleware.RequireAdmin(), h.UpdateOrderStatus)
		}

		// --- Uploads ---
		api.POST("/upload", middleware.AuthMiddleware(h.Tokens), h.UploadImage)
	}

	return router
}

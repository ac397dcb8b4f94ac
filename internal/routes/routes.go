package routes

import (
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/handlers/product"
	"storefront/internal/handlers/user"
	"storefront/internal/middleware"
	"storefront/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps regroupe ce dont les routes ont besoin, construit par app.New
type Deps struct {
	Auth       *user.AuthHandler
	Cart       *user.CartHandler
	CartSocket *user.CartSocket
	Orders     *user.OrderHandler
	Products   *product.ProductHandler

	Tokens         *auth.TokenMaker
	Blacklist      *cache.TokenBlacklist
	Sessions       *auth.SessionStore
	Limiter        *cache.RateLimiter
	AllowedOrigins []string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit(d.Limiter))

	authRequired := middleware.AuthRequired(d.Tokens, d.Blacklist, d.Sessions)

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(d.Limiter), d.Auth.Login)
		authGroup.POST("/logout", authRequired, d.Auth.Logout)
		authGroup.GET("/session", d.Auth.Session)
		authGroup.GET("/oauth/:provider", d.Auth.BeginOAuth)
		authGroup.GET("/oauth/:provider/callback", d.Auth.OAuthCallback)
	}

	// Catalogue public
	api.GET("/products", d.Products.ListProducts)
	api.GET("/products/:id", d.Products.GetProduct)

	sellers := api.Group("/products", authRequired, middleware.RequireRole(models.RoleSeller, models.RoleAdmin))
	{
		sellers.POST("", d.Products.CreateProduct)
		sellers.PUT("/:id", d.Products.UpdateProduct)
		sellers.DELETE("/:id", d.Products.DeleteProduct)
	}

	api.GET("/admin/products", authRequired, middleware.RequireRole(models.RoleAdmin), d.Products.AdminProducts)
	api.GET("/seller/products", authRequired, middleware.RequireRole(models.RoleSeller), d.Products.SellerProducts)

	// Panier
	cart := api.Group("/cart", authRequired)
	{
		cart.GET("", d.Cart.GetCart)
		cart.POST("", middleware.CartRateLimit(d.Limiter), d.Cart.AddToCart)
		cart.PATCH("/items/:id", d.Cart.UpdateQuantity)
		cart.DELETE("/items/:id", d.Cart.RemoveItem)
		cart.DELETE("", d.Cart.ClearCart)
		cart.GET("/ws", d.CartSocket.Serve)
	}

	// Commandes
	orders := api.Group("/orders", authRequired)
	{
		orders.POST("", d.Orders.Checkout)
		orders.GET("", d.Orders.ListOrders)
		orders.GET("/:id", d.Orders.GetOrder)
		orders.GET("/:id/pickup-qr", d.Orders.PickupQR)
	}
}

package router

import (
	"github.com/greenshop/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers holds every handler mounted under the versioned API
type Handlers struct {
	System     *handler.SystemHandler
	Catalog    *handler.CatalogHandler
	Storefront *handler.StorefrontHandler
	Session    *handler.SessionHandler
	Checkout   *handler.CheckoutHandler
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Upload     *handler.UploadHandler
	Order      *handler.OrderHandler
	Settings   *handler.SettingsHandler
	Dashboard  *handler.DashboardHandler
}

// Guards are the per-area middleware. Session resolves the shopper session
// and AdminAuth validates the admin bearer token.
type Guards struct {
	Session   gin.HandlerFunc
	AdminAuth gin.HandlerFunc
}

// ShopRoutes builds the public catalog, shopper and admin route groups
func ShopRoutes(h Handlers, g Guards) []RouteRegistrar {
	system := NewDomainGroup("system", "")
	system.GET("/ping", h.System.Ping)
	system.GET("/system/info", h.System.GetSystemInfo)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", h.Catalog.Browse)
	catalog.GET("/products/:id", h.Catalog.GetByID)
	catalog.GET("/products/:id/related", h.Catalog.Related)
	catalog.GET("/home", h.Catalog.Home)
	catalog.GET("/filters", h.Catalog.Filters)

	storefront := NewDomainGroup("storefront", "/storefront").Use(g.Session)
	storefront.GET("/bootstrap", h.Storefront.Bootstrap)

	session := NewDomainGroup("session", "/session").Use(g.Session)
	session.GET("", h.Session.Get)
	session.POST("/cart/items", h.Session.AddItem)
	session.PATCH("/cart/items/:product_id", h.Session.UpdateItem)
	session.DELETE("/cart/items/:product_id", h.Session.RemoveItem)
	session.DELETE("/cart", h.Session.ClearCart)
	session.POST("/favorites/:product_id/toggle", h.Session.ToggleFavorite)
	session.GET("/favorites/products", h.Session.FavoriteProducts)

	checkout := NewDomainGroup("checkout", "/checkout").Use(g.Session)
	checkout.POST("", h.Checkout.Checkout)

	admin := NewDomainGroup("admin", "/admin").Use(g.AdminAuth)
	auth := admin.Group("auth", "/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	admin.GET("/stats", h.Dashboard.Stats)

	products := admin.Group("products", "/products")
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)

	admin.POST("/uploads/images", h.Upload.UploadImages)

	orders := admin.Group("orders", "/orders")
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.GetByID)
	orders.PUT("/:id", h.Order.Update)
	orders.PATCH("/:id/status", h.Order.SetStatus)
	orders.DELETE("/:id", h.Order.Delete)

	settings := admin.Group("settings", "/settings")
	settings.GET("", h.Settings.Get)
	settings.PUT("", h.Settings.Save)

	return []RouteRegistrar{system, catalog, storefront, session, checkout, admin}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	"github.com/greenshop/backend/internal/application/identity"
	"github.com/greenshop/backend/internal/application/report"
	settingsapp "github.com/greenshop/backend/internal/application/settings"
	"github.com/greenshop/backend/internal/application/storefront"
	tradeapp "github.com/greenshop/backend/internal/application/trade"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/auth"
	"github.com/greenshop/backend/internal/infrastructure/cache"
	"github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/greenshop/backend/internal/infrastructure/persistence"
	"github.com/greenshop/backend/internal/infrastructure/persistence/models"
	"github.com/greenshop/backend/internal/infrastructure/storage"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testAdminPassword = "bootstrap-pass"

func init() {
	settings.PasswordCost = bcrypt.MinCost
}

// shopFixture wires the real services over an in-memory SQLite database
// and mounts the handlers the way the router does
type shopFixture struct {
	router   *gin.Engine
	products *catalogapp.ProductService
	orders   *tradeapp.OrderService
	storage  *storage.StubObjectStorage
	jwt      *auth.JWTService
}

func newShopFixture(t *testing.T) *shopFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	productCache := cache.NewInMemoryCollectionCache[catalog.Product]("products", cache.WithTTL(time.Minute))
	orderCache := cache.NewInMemoryCollectionCache[trade.Order]("orders", cache.WithTTL(time.Minute))
	sessionStore := cache.NewInMemorySessionStore(time.Hour, time.Minute)
	t.Cleanup(func() {
		_ = productCache.Close()
		_ = orderCache.Close()
		_ = sessionStore.Close()
	})

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	settingsRepo := persistence.NewGormSettingsRepository(db)
	objects := storage.NewStubObjectStorage("http://cdn.test")

	products := catalogapp.NewProductService(persistence.NewGormProductRepository(db), productCache)
	orders := tradeapp.NewOrderService(persistence.NewGormOrderRepository(db), orderCache)
	authService := identity.NewAuthService(settingsRepo, jwtService, blacklist, nil, identity.AuthServiceConfig{
		Login:             "admin",
		BootstrapPassword: testAdminPassword,
	}, nil)
	settingsService := settingsapp.NewSettingsService(settingsRepo, authService, nil)
	sessions := storefront.NewSessionService(sessionStore, products, nil)
	checkout := storefront.NewCheckoutService(sessions, orders, nil)

	catalogH := NewCatalogHandler(products)
	storefrontH := NewStorefrontHandler(storefront.NewBootstrapService(settingsService, nil))
	sessionH := NewSessionHandler(sessions)
	checkoutH := NewCheckoutHandler(checkout)
	authH := NewAuthHandler(authService)
	productH := NewProductHandler(products)
	uploadH := NewUploadHandler(catalogapp.NewImageService(objects))
	orderH := NewOrderHandler(orders)
	settingsH := NewSettingsHandler(settingsService)
	dashboardH := NewDashboardHandler(report.NewDashboardService(products, orders, nil))

	middleware.SetupValidator()
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")

	api.GET("/catalog/products", catalogH.Browse)
	api.GET("/catalog/products/:id", catalogH.GetByID)
	api.GET("/catalog/products/:id/related", catalogH.Related)
	api.GET("/catalog/home", catalogH.Home)
	api.GET("/catalog/filters", catalogH.Filters)

	shopper := api.Group("", middleware.Session(middleware.DefaultSessionConfig()))
	shopper.GET("/storefront/bootstrap", storefrontH.Bootstrap)
	shopper.GET("/session", sessionH.Get)
	shopper.POST("/session/cart/items", sessionH.AddItem)
	shopper.PATCH("/session/cart/items/:product_id", sessionH.UpdateItem)
	shopper.DELETE("/session/cart/items/:product_id", sessionH.RemoveItem)
	shopper.DELETE("/session/cart", sessionH.ClearCart)
	shopper.POST("/session/favorites/:product_id/toggle", sessionH.ToggleFavorite)
	shopper.GET("/session/favorites/products", sessionH.FavoriteProducts)
	shopper.POST("/checkout", checkoutH.Checkout)

	adminCfg := middleware.NewAdminAuthConfig(jwtService)
	adminCfg.Revocations = blacklist
	admin := api.Group("/admin", middleware.AdminAuth(adminCfg))
	admin.POST("/auth/login", authH.Login)
	admin.POST("/auth/refresh", authH.Refresh)
	admin.POST("/auth/logout", authH.Logout)
	admin.GET("/stats", dashboardH.Stats)
	admin.GET("/products", productH.List)
	admin.POST("/products", productH.Create)
	admin.PUT("/products/:id", productH.Update)
	admin.DELETE("/products/:id", productH.Delete)
	admin.POST("/uploads/images", uploadH.UploadImages)
	admin.GET("/orders", orderH.List)
	admin.GET("/orders/:id", orderH.GetByID)
	admin.PUT("/orders/:id", orderH.Update)
	admin.PATCH("/orders/:id/status", orderH.SetStatus)
	admin.DELETE("/orders/:id", orderH.Delete)
	admin.GET("/settings", settingsH.Get)
	admin.PUT("/settings", settingsH.Save)

	return &shopFixture{router: r, products: products, orders: orders, storage: objects, jwt: jwtService}
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withSession(id string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.SessionIDHeader, id) }
}

func withContentType(ct string) requestOption {
	return func(r *http.Request) { r.Header.Set("Content-Type", ct) }
}

func (f *shopFixture) do(method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// adminToken issues an access token for the configured admin
func (f *shopFixture) adminToken(t *testing.T) string {
	t.Helper()
	pair, err := f.jwt.GenerateTokenPair("admin")
	require.NoError(t, err)
	return pair.AccessToken
}

// seedProduct stores a product through the service so the catalog cache is invalidated
func (f *shopFixture) seedProduct(t *testing.T, title string, price int64, category string, inStock bool) uuid.UUID {
	t.Helper()
	p := decimal.NewFromInt(price)
	resp, err := f.products.Create(context.Background(), catalogapp.CreateProductRequest{
		Title:    title,
		Price:    &p,
		Category: category,
		InStock:  inStock,
	})
	require.NoError(t, err)
	return resp.ID
}

// dataAs decodes the envelope data into out
func dataAs(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

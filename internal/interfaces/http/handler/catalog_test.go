package handler

import (
	"net/http"
	"testing"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	"github.com/greenshop/backend/internal/application/storefront"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_Browse(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 100, "plants", true)
	f.seedProduct(t, "Teapot", 50, "china", false)
	f.seedProduct(t, "Cactus", 300, "plants", false)

	t.Run("category and stock filter", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/catalog/products?category=plants&in_stock_only=true", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp catalogapp.BrowseResponse
		dataAs(t, w, &resp)
		require.Len(t, resp.Products, 1)
		assert.Equal(t, fern, resp.Products[0].ID)
		assert.Equal(t, 1, resp.Meta.Total)
		assert.True(t, resp.Meta.MaxPrice.GreaterThanOrEqual(resp.Products[0].Price))
	})

	t.Run("comma separated categories and price sort", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/catalog/products?category=plants,china&sort=price_asc", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp catalogapp.BrowseResponse
		dataAs(t, w, &resp)
		require.Len(t, resp.Products, 3)
		assert.Equal(t, "Teapot", resp.Products[0].Title)
		assert.Equal(t, "Cactus", resp.Products[2].Title)
		assert.Equal(t, string(catalog.SortPriceAsc), resp.Meta.Sort)
	})

	t.Run("inclusive price range", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/catalog/products?min_price=50&max_price=100", nil)

		var resp catalogapp.BrowseResponse
		dataAs(t, w, &resp)
		assert.Len(t, resp.Products, 2)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/catalog/products?category=weapons", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_CATEGORY", decodeResponse(t, w).Error.Code)
	})

	t.Run("malformed price is rejected", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/catalog/products?min_price=cheap", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_PRICE", decodeResponse(t, w).Error.Code)
	})
}

func TestCatalogHandler_GetByID(t *testing.T) {
	f := newShopFixture(t)
	id := f.seedProduct(t, "Fern", 100, "plants", true)

	w := f.do(http.MethodGet, "/api/v1/catalog/products/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product catalogapp.ProductResponse
	dataAs(t, w, &product)
	assert.Equal(t, "Fern", product.Title)

	w = f.do(http.MethodGet, "/api/v1/catalog/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)

	w = f.do(http.MethodGet, "/api/v1/catalog/products/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_Related(t *testing.T) {
	f := newShopFixture(t)
	fern := f.seedProduct(t, "Fern", 100, "plants", true)
	f.seedProduct(t, "Cactus", 300, "plants", true)
	f.seedProduct(t, "Teapot", 50, "china", true)

	w := f.do(http.MethodGet, "/api/v1/catalog/products/"+fern.String()+"/related", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var related []catalogapp.ProductResponse
	dataAs(t, w, &related)
	require.Len(t, related, 1)
	assert.Equal(t, "Cactus", related[0].Title)
}

func TestCatalogHandler_HomeAndFilters(t *testing.T) {
	f := newShopFixture(t)
	for i := range 6 {
		f.seedProduct(t, "Plant "+string(rune('A'+i)), int64(10*(i+1)), "plants", true)
	}

	w := f.do(http.MethodGet, "/api/v1/catalog/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var home catalogapp.HomeResponse
	dataAs(t, w, &home)
	assert.Len(t, home.NewArrivals, catalogapp.HomeNewSize)

	w = f.do(http.MethodGet, "/api/v1/catalog/filters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var meta catalog.Metadata
	dataAs(t, w, &meta)
	assert.NotEmpty(t, meta.Categories)
}

func TestStorefrontHandler_Bootstrap(t *testing.T) {
	f := newShopFixture(t)

	w := f.do(http.MethodGet, "/api/v1/storefront/bootstrap", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp storefront.BootstrapResponse
	dataAs(t, w, &resp)
	assert.Equal(t, w.Header().Get("X-Session-ID"), resp.SessionID)
	assert.NotEmpty(t, resp.SessionID)
	assert.ElementsMatch(t, catalog.Categories, resp.Categories)
	assert.NotEmpty(t, resp.SortKeys)
}

package handler

import (
	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the storefront catalog. Every read comes from the
// cached newest-first product list.
type CatalogHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{productService: productService}
}

// Browse godoc
// @ID           browseCatalog
// @Summary      Browse the catalog
// @Description  Search, filter and sort storefront products. Set filters accept repeated or comma-separated values.
// @Tags         catalog
// @Produce      json
// @Param        q              query string  false "Title or description search"
// @Param        category       query []string false "Category filter" collectionFormat(multi)
// @Param        subcategory    query []string false "Subcategory filter" collectionFormat(multi)
// @Param        condition      query []string false "Condition filter" collectionFormat(multi)
// @Param        min_price      query string  false "Lower price bound, inclusive"
// @Param        max_price      query string  false "Upper price bound, inclusive"
// @Param        in_stock_only  query bool    false "Only products in stock"
// @Param        sort           query string  false "Sort key" Enums(newest, price_asc, price_desc, popular)
// @Success      200 {object} APIResponse[catalogapp.BrowseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /catalog/products [get]
func (h *CatalogHandler) Browse(c *gin.Context) {
	var req catalogapp.BrowseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.productService.Browse(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @ID           getCatalogProduct
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Related godoc
// @ID           getRelatedProducts
// @Summary      Related products
// @Description  Up to four other products from the same category
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id}/related [get]
func (h *CatalogHandler) Related(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	products, err := h.productService.Related(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Home godoc
// @ID           getCatalogHome
// @Summary      Home page selections
// @Description  Featured products and new arrivals
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[catalogapp.HomeResponse]
// @Router       /catalog/home [get]
func (h *CatalogHandler) Home(c *gin.Context) {
	home, err := h.productService.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, home)
}

// Filters godoc
// @ID           getCatalogFilters
// @Summary      Filter metadata
// @Description  Availability counts, per-category counts and the catalog price range
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[catalog.Metadata]
// @Router       /catalog/filters [get]
func (h *CatalogHandler) Filters(c *gin.Context) {
	meta, err := h.productService.Filters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meta)
}

package handler

import (
	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ProductHandler is the admin product manager. Reads bypass the catalog
// cache; every write invalidates it.
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List godoc
// @ID           adminListProducts
// @Summary      List products
// @Description  Admin product list read straight from the database
// @Tags         admin-products
// @Produce      json
// @Param        search    query string false "Title or description search"
// @Param        category  query string false "Category" Enums(plants, china, personal)
// @Param        featured  query bool   false "Featured only"
// @Param        in_stock  query bool   false "Stock filter"
// @Param        order_by  query string false "Sort field, '-' prefix for descending" default(-created_date)
// @Param        limit     query int    false "Maximum rows" minimum(1) maximum(500)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.AdminProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	filter.Limit = shared.NormalizeLimit(filter.Limit)

	products, err := h.products.AdminList(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, products, int64(len(products)), filter.Limit)
}

// Create godoc
// @ID           adminCreateProduct
// @Summary      Create a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update godoc
// @ID           adminUpdateProduct
// @Summary      Update a product
// @Description  Partial update. Absent fields are left untouched.
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @ID           adminDeleteProduct
// @Summary      Delete a product
// @Tags         admin-products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

package handler

import (
	"github.com/greenshop/backend/internal/application/storefront"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SessionHandler serves the shopper cart and favorites.
// The session id is resolved by the session middleware.
type SessionHandler struct {
	BaseHandler
	sessions *storefront.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *storefront.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get godoc
// @ID           getSession
// @Summary      Get the shopper session
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Success      200 {object} APIResponse[storefront.SessionResponse]
// @Router       /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	resp, err := h.sessions.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add a product to the cart
// @Description  Adding a product already in the cart increments its quantity
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Param        request body storefront.AddItemRequest true "Product and quantity"
// @Success      200 {object} APIResponse[storefront.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /session/cart/items [post]
func (h *SessionHandler) AddItem(c *gin.Context) {
	var req storefront.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.sessions.AddItem(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
// @ID           updateCartItem
// @Summary      Change a cart line quantity
// @Description  Applies a delta to the quantity. The result never drops below one.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body storefront.UpdateQuantityRequest true "Quantity delta"
// @Success      200 {object} APIResponse[storefront.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /session/cart/items/{product_id} [patch]
func (h *SessionHandler) UpdateItem(c *gin.Context) {
	productID, ok := h.parseUUIDParam(c, "product_id")
	if !ok {
		return
	}
	var req storefront.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.sessions.UpdateQuantity(c.Request.Context(), middleware.GetSessionID(c), productID, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove a cart line
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[storefront.SessionResponse]
// @Router       /session/cart/items/{product_id} [delete]
func (h *SessionHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.parseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	resp, err := h.sessions.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearCart godoc
// @ID           clearCart
// @Summary      Empty the cart
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Success      200 {object} APIResponse[storefront.SessionResponse]
// @Router       /session/cart [delete]
func (h *SessionHandler) ClearCart(c *gin.Context) {
	resp, err := h.sessions.ClearCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ToggleFavorite godoc
// @ID           toggleFavorite
// @Summary      Toggle a favorite
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[storefront.ToggleFavoriteResponse]
// @Router       /session/favorites/{product_id}/toggle [post]
func (h *SessionHandler) ToggleFavorite(c *gin.Context) {
	productID, ok := h.parseUUIDParam(c, "product_id")
	if !ok {
		return
	}

	resp, err := h.sessions.ToggleFavorite(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// FavoriteProducts godoc
// @ID           listFavoriteProducts
// @Summary      Favorite products
// @Description  Favorites that are still in the catalog, in catalog order
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Router       /session/favorites/products [get]
func (h *SessionHandler) FavoriteProducts(c *gin.Context) {
	products, err := h.sessions.FavoriteProducts(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

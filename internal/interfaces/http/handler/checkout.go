package handler

import (
	"github.com/greenshop/backend/internal/application/storefront"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler turns the shopper cart into an order
type CheckoutHandler struct {
	BaseHandler
	checkout *storefront.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout *storefront.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout godoc
// @ID           checkout
// @Summary      Place an order
// @Description  Creates a pending order from the cart and clears the cart once the order is stored
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Param        request body storefront.CheckoutRequest true "Customer details"
// @Success      201 {object} APIResponse[storefront.CheckoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Empty cart"
// @Failure      500 {object} ErrorResponse
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req storefront.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

package handler

import (
	"github.com/greenshop/backend/internal/application/storefront"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// StorefrontHandler serves the storefront bootstrap payload
type StorefrontHandler struct {
	BaseHandler
	bootstrap *storefront.BootstrapService
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(bootstrap *storefront.BootstrapService) *StorefrontHandler {
	return &StorefrontHandler{bootstrap: bootstrap}
}

// Bootstrap godoc
// @ID           storefrontBootstrap
// @Summary      Storefront bootstrap
// @Description  Shop contact details, taxonomy, filter defaults and the shopper session id
// @Tags         storefront
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id"
// @Success      200 {object} APIResponse[storefront.BootstrapResponse]
// @Router       /storefront/bootstrap [get]
func (h *StorefrontHandler) Bootstrap(c *gin.Context) {
	h.Success(c, h.bootstrap.Bootstrap(c.Request.Context(), middleware.GetSessionID(c)))
}

package handler

import (
	settingsapp "github.com/greenshop/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles the admin settings manager
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *settingsapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get godoc
// @ID           adminGetSettings
// @Summary      Get shop settings
// @Description  The admin password is never returned, only whether one is set
// @Tags         admin-settings
// @Produce      json
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      404 {object} ErrorResponse "Not configured yet"
// @Security     BearerAuth
// @Router       /admin/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	resp, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Save godoc
// @ID           adminSaveSettings
// @Summary      Save shop settings
// @Description  Creates the settings on first save. A new password signs out every admin session.
// @Tags         admin-settings
// @Accept       json
// @Produce      json
// @Param        request body settingsapp.SaveSettingsRequest true "Fields to change"
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/settings [put]
func (h *SettingsHandler) Save(c *gin.Context) {
	var req settingsapp.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.settingsService.Save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

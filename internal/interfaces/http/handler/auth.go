package handler

import (
	"errors"
	"io"

	"github.com/greenshop/backend/internal/application/identity"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves the admin token endpoints
type AuthHandler struct {
	BaseHandler
	auth *identity.AuthService
}

func NewAuthHandler(auth *identity.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// respondTokens writes a token pair or the error that prevented issuing one
func (h *AuthHandler) respondTokens(c *gin.Context, result *identity.TokenResult, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTokenResponse(result))
}

// Login godoc
// @ID           adminLogin
// @Summary      Admin login
// @Description  Exchange the admin login and password for an access and refresh token. Attempts are throttled per client IP.
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /admin/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	in := identity.LoginInput{Login: req.Login, Password: req.Password, IP: c.ClientIP()}
	result, err := h.auth.Login(c.Request.Context(), in)
	h.respondTokens(c, result, err)
}

// Refresh godoc
// @ID           adminRefreshToken
// @Summary      Refresh admin tokens
// @Description  Rotate a refresh token. The presented token cannot be used again.
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /admin/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	h.respondTokens(c, result, err)
}

// Logout godoc
// @ID           adminLogout
// @Summary      Admin logout
// @Description  Revoke the current access token and, when sent, the refresh token
// @Tags         admin-auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[LogoutResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.AdminClaims(c)
	if claims == nil {
		h.Unauthorized(c, "admin token required")
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}

	err := h.auth.Logout(c.Request.Context(), identity.LogoutInput{
		Login:        claims.Login,
		TokenJTI:     claims.ID,
		TokenTTL:     claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

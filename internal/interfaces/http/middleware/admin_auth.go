package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenshop/backend/internal/infrastructure/auth"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const adminClaimsKey = "admin_claims"

// AdminAuthConfig configures the bearer-token guard of the admin group
type AdminAuthConfig struct {
	Tokens *auth.JWTService
	// Revocations is optional; lookups that fail are logged and let through
	Revocations auth.TokenBlacklist
	// Public paths are served without a token
	Public []string
	// OnError replaces the default 401 response
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// NewAdminAuthConfig leaves login and refresh public
func NewAdminAuthConfig(tokens *auth.JWTService) AdminAuthConfig {
	return AdminAuthConfig{
		Tokens: tokens,
		Public: []string{"/api/v1/admin/auth/login", "/api/v1/admin/auth/refresh"},
	}
}

func AdminAuth(cfg AdminAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reject := cfg.OnError
	if reject == nil {
		reject = func(c *gin.Context, err error) {
			log.Warn("admin auth rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			code, msg := authFailure(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
		}
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.Public, c.Request.URL.Path) {
			c.Next()
			return
		}

		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			reject(c, auth.ErrInvalidToken)
			return
		}
		claims, err := cfg.Tokens.ValidateAccessToken(raw)
		if err != nil {
			reject(c, err)
			return
		}
		if cfg.Revocations != nil && revoked(c, cfg.Revocations, claims, log) {
			reject(c, auth.ErrTokenBlacklisted)
			return
		}

		c.Set(adminClaimsKey, claims)
		c.Set(logger.GinAdminKey, claims.Login)
		c.Request = c.Request.WithContext(logger.WithAdmin(c.Request.Context(), claims.Login))
		c.Next()
	}
}

// revoked checks the token id and the login-wide cutoff. A failing store
// must not lock admins out, so errors count as not revoked.
func revoked(c *gin.Context, store auth.TokenBlacklist, claims *auth.Claims, log *zap.Logger) bool {
	ctx := c.Request.Context()
	if claims.ID != "" {
		hit, err := store.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			log.Error("token revocation lookup failed", zap.String("jti", claims.ID), zap.Error(err))
		} else if hit {
			return true
		}
	}
	cut, err := store.IsLoginTokenInvalidated(ctx, claims.Login, claims.GetIssuedAtTime())
	if err != nil {
		log.Error("login revocation lookup failed", zap.String("login", claims.Login), zap.Error(err))
		return false
	}
	return cut
}

func authFailure(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingLogin),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
	return dto.ErrCodeUnauthorized, "Authentication required"
}

// AdminClaims returns the verified token claims, nil outside the admin group
func AdminClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.Value(adminClaimsKey).(*auth.Claims)
	return claims
}

func GetAdminLogin(c *gin.Context) string {
	return c.GetString(logger.GinAdminKey)
}

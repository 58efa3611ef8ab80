package middleware

import (
	"net/http"
	"time"

	"github.com/greenshop/backend/internal/application/storefront"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// SessionConfig controls how the anonymous shopper session is carried
type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	MaxAge       time.Duration
}

// DefaultSessionConfig returns a 30 day "sid" cookie
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: "sid",
		MaxAge:     30 * 24 * time.Hour,
	}
}

// Session resolves the shopper session id from the X-Session-ID header or the
// session cookie. Missing or malformed ids are replaced by a fresh one, which is
// echoed back in both places so header-only clients can keep it.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	maxAge := int(cfg.MaxAge / time.Second)

	return func(c *gin.Context) {
		raw := c.GetHeader(SessionIDHeader)
		if raw == "" {
			raw, _ = c.Cookie(cfg.CookieName)
		}

		id, _ := storefront.ResolveID(raw)

		c.Set(logger.GinSessionIDKey, id)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), id))
		c.Header(SessionIDHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, maxAge, "/", "", cfg.CookieSecure, true)

		c.Next()
	}
}

// GetSessionID returns the resolved shopper session id
func GetSessionID(c *gin.Context) string {
	return c.GetString(logger.GinSessionIDKey)
}

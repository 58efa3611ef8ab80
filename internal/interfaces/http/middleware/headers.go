package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/infrastructure/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	SessionIDHeader = "X-Session-ID"
)

// RequestID keeps a well-formed incoming X-Request-ID and issues a UUID
// otherwise. The id is echoed back and added to the request context for
// logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(logger.GinRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// letters, digits and -_. up to 64 bytes
func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		}
		return !strings.ContainsRune("-_.", r)
	}) < 0
}

func GetRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// SecurityConfig configures SecurityHeaders. HSTSMaxAge of zero leaves
// Strict-Transport-Security off, which is right until TLS terminates here.
type SecurityConfig struct {
	HSTSMaxAge        time.Duration
	HSTSSubdomains    bool
	CSP               string
	PermissionsPolicy string
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSSubdomains:    true,
		CSP:               "default-src 'none'; img-src 'self' data: https:; frame-ancestors 'none'; base-uri 'none'",
		PermissionsPolicy: "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
	}
}

// SecurityHeaders sets the browser hardening headers. The swagger UI needs
// scripts, so it is served without the CSP.
func SecurityHeaders(cfg SecurityConfig) gin.HandlerFunc {
	fixed := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	if cfg.HSTSMaxAge > 0 {
		hsts := "max-age=" + strconv.Itoa(int(cfg.HSTSMaxAge/time.Second))
		if cfg.HSTSSubdomains {
			hsts += "; includeSubDomains"
		}
		fixed["Strict-Transport-Security"] = hsts
	}
	if cfg.PermissionsPolicy != "" {
		fixed["Permissions-Policy"] = cfg.PermissionsPolicy
	}

	return func(c *gin.Context) {
		for k, v := range fixed {
			c.Header(k, v)
		}
		if cfg.CSP != "" && !strings.HasPrefix(c.Request.URL.Path, "/swagger") {
			c.Header("Content-Security-Policy", cfg.CSP)
		}
		c.Next()
	}
}

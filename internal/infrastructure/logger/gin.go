package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// gin context keys, set by the HTTP middleware and read back here
const (
	GinLoggerKey    = "logger"
	GinRequestIDKey = "request_id"
	GinSessionIDKey = "session_id"
	GinAdminKey     = "admin_login"
)

// AccessLog writes one "http request" entry per request at a level chosen
// by status. Successful requests to quiet paths (probes) are not logged.
// Handlers reach the request logger through GetGinLogger.
func AccessLog(log *zap.Logger, quiet ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetString(GinRequestIDKey)
		reqLog := log.With(
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set(GinLoggerKey, reqLog)

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest && slices.Contains(quiet, c.Request.URL.Path) {
			return
		}
		ce := reqLog.Check(levelFor(status), "http request")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		for _, f := range []struct{ key, val string }{
			{"query", c.Request.URL.RawQuery},
			{"session_id", c.GetString(GinSessionIDKey)},
			{"admin", c.GetString(GinAdminKey)},
		} {
			if f.val != "" {
				fields = append(fields, zap.String(f.key, f.val))
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		ce.Write(fields...)
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a panic into a logged stack trace and a 500 in the API
// error envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			reqID := c.GetString(GinRequestIDKey)
			log.Error("panic recovered",
				zap.String("request_id", reqID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "ERR_INTERNAL", "message": "An internal error occurred", "request_id": reqID},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger, or a no-op outside AccessLog
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Value(GinLoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

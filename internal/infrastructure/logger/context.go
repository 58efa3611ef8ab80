package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionIDKey
	adminKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithSessionID tags ctx with the storefront session
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithAdmin tags ctx with the authenticated admin login
func WithAdmin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, adminKey, login)
}

func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

func GetSessionID(ctx context.Context) string { return stringValue(ctx, sessionIDKey) }

func GetAdmin(ctx context.Context) string { return stringValue(ctx, adminKey) }

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetTraceID returns the active span's trace id, or "" outside a span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// For returns base annotated with whatever ctx carries: trace and span ids,
// request id, session id and admin login. A nil base yields a no-op logger.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, zap.Stringer("trace_id", sc.TraceID()), zap.Stringer("span_id", sc.SpanID()))
	}
	for _, kv := range []struct {
		name string
		key  ctxKey
	}{
		{"request_id", requestIDKey},
		{"session_id", sessionIDKey},
		{"admin", adminKey},
	} {
		if v := stringValue(ctx, kv.key); v != "" {
			fields = append(fields, zap.String(kv.name, v))
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

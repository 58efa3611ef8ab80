package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// API areas, a low-cardinality label on spans, metrics and profiles
const (
	AreaStorefront = "storefront"
	AreaAdmin      = "admin"
	AreaSystem     = "system"
)

// APIArea classifies a route pattern
func APIArea(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/v1/admin"):
		return AreaAdmin
	case strings.HasPrefix(route, "/api/v1/"):
		return AreaStorefront
	default:
		return AreaSystem
	}
}

// routeOf returns the matched pattern so raw ids never become label values
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func passThrough(c *gin.Context) {
	c.Next()
}

// Tracing starts a server span per request, named "METHOD /route/:param"
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return otelgin.Middleware(serviceName)
}

// SpanAnnotator runs inside Tracing. Once the handler chain returns it tags
// the span with the request id, area, shopper session and admin login, and
// fails it on 4xx and 5xx responses.
func SpanAnnotator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(attribute.String("shop.area", APIArea(c.FullPath())))
		for attr, key := range map[string]string{
			"shop.request_id": logger.GinRequestIDKey,
			"shop.session_id": logger.GinSessionIDKey,
			"shop.admin":      logger.GinAdminKey,
		} {
			if v := c.GetString(key); v != "" {
				span.SetAttributes(attribute.String(attr, v))
			}
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

type httpInstruments struct {
	requests     *telemetry.Counter
	duration     *telemetry.Histogram
	requestSize  *telemetry.Histogram
	responseSize *telemetry.Histogram
	inFlight     metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	in := &httpInstruments{}
	var err error
	if in.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests by route, status and area", "{request}"); err != nil {
		return nil, err
	}
	if in.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_duration_seconds", Description: "HTTP request latency", Unit: "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	// Image uploads fill the upper buckets
	if in.requestSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_size_bytes", Description: "HTTP request body size", Unit: "By",
		Boundaries: []float64{100, 1e3, 1e4, 1e5, 1e6, 5e6, 25e6},
	}); err != nil {
		return nil, err
	}
	if in.responseSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_response_size_bytes", Description: "HTTP response body size", Unit: "By",
		Boundaries: []float64{100, 500, 1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6},
	}); err != nil {
		return nil, err
	}
	if in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests being served"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return in, nil
}

// HTTPMetrics records request counts, latency and body sizes. It is a no-op
// when mp is nil or disabled.
func HTTPMetrics(mp *telemetry.MeterProvider) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(mp.Meter("greenshop/http"))
}

// HTTPMetricsWithMeter records into an existing meter
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		in.inFlight.Add(ctx, 1)
		defer in.inFlight.Add(ctx, -1)

		c.Next()

		route := routeOf(c)
		base := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		in.requests.Inc(ctx, append(base,
			telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
			telemetry.AttrArea.String(APIArea(route)),
		)...)
		in.duration.RecordDuration(ctx, time.Since(start), base...)
		if n := c.Request.ContentLength; n > 0 {
			in.requestSize.Record(ctx, float64(n), base...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.responseSize.Record(ctx, float64(n), base...)
		}
	}
}

// ProfilingConfig selects which requests get Pyroscope labels
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// Profiling runs each request under pprof labels for method, route,
// controller and area, so profiles can be split per endpoint.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] || hasAnyPrefix(path, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	labels := map[string]string{telemetry.ProfilingLabelMethod: c.Request.Method}
	if route == "" {
		return labels
	}
	labels[telemetry.ProfilingLabelRoute] = route
	labels[telemetry.ProfilingLabelArea] = APIArea(route)
	if controller := controllerOf(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}
	return labels
}

// controllerOf picks the first resource segment of a route:
// "/api/v1/admin/orders/:id/status" gives "orders".
func controllerOf(route string) string {
	for part := range strings.SplitSeq(route, "/") {
		switch {
		case part == "", part == "api", part == "admin", isAPIVersion(part):
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
		default:
			return part
		}
	}
	return ""
}

func isAPIVersion(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

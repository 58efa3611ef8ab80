// Package cache provides the freshness-window list caches and the storefront
// session stores, each with a Redis and an in-memory implementation.
package cache

import (
	"context"
	"time"

	"github.com/greenshop/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DefaultListTTL is the freshness window for cached entity lists
const DefaultListTTL = 5 * time.Minute

// CollectionCache caches whole entity lists keyed by query shape.
// Invalidate drops every key at once; callers invalidate after any write.
//
// Get reports the cache generation it looked in. A read-through caller
// passes that generation back to Set, and Set drops the list when an
// Invalidate happened in between, so a list loaded before a write never
// outlives the write's invalidation.
type CollectionCache[T any] interface {
	// Get returns the cached list and true, or nil and false on a miss
	Get(ctx context.Context, key string) (items []T, gen int64, ok bool, err error)
	// Set stores a list loaded in generation gen for the freshness window
	Set(ctx context.Context, key string, gen int64, items []T) error
	// Invalidate drops all cached lists
	Invalidate(ctx context.Context) error
}

// CacheOption configures a collection cache
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	ttl             time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	meter           metric.Meter
}

func defaultCacheOptions() *cacheOptions {
	return &cacheOptions{
		ttl:             DefaultListTTL,
		cleanupInterval: time.Minute,
		logger:          zap.NewNop(),
	}
}

// WithTTL sets the freshness window
func WithTTL(ttl time.Duration) CacheOption {
	return func(o *cacheOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often the in-memory cache purges expired entries
func WithCleanupInterval(d time.Duration) CacheOption {
	return func(o *cacheOptions) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(o *cacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeter records hit and miss counters on the given meter
func WithMeter(meter metric.Meter) CacheOption {
	return func(o *cacheOptions) {
		o.meter = meter
	}
}

// hitCounter reports cache lookups as otel counters when a meter is configured
type hitCounter struct {
	namespace attribute.KeyValue
	hits      *telemetry.Counter
	misses    *telemetry.Counter
}

func newHitCounter(namespace string, meter metric.Meter, logger *zap.Logger) *hitCounter {
	hc := &hitCounter{namespace: attribute.String("cache", namespace)}
	if meter == nil {
		return hc
	}
	var err error
	if hc.hits, err = telemetry.NewCounter(meter, "cache_hits_total", "Collection cache hits", "{lookup}"); err != nil {
		logger.Warn("Failed to create cache hit counter", zap.Error(err))
	}
	if hc.misses, err = telemetry.NewCounter(meter, "cache_misses_total", "Collection cache misses", "{lookup}"); err != nil {
		logger.Warn("Failed to create cache miss counter", zap.Error(err))
	}
	return hc
}

func (h *hitCounter) record(ctx context.Context, hit bool) {
	switch {
	case hit && h.hits != nil:
		h.hits.Inc(ctx, h.namespace)
	case !hit && h.misses != nil:
		h.misses.Inc(ctx, h.namespace)
	}
}

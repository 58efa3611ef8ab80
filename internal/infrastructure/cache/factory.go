package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/greenshop/backend/internal/domain/cart"
	"github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Factory creates caches and session stores based on configuration.
// It connects to Redis once; when Redis is disabled or unreachable it hands
// out in-memory implementations if fallback is allowed.
type Factory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	meter                 metric.Meter
	allowInMemoryFallback bool

	client  redis.UniversalClient
	closers []func() error
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithFactoryMeter passes a meter to every cache the factory creates
func WithFactoryMeter(meter metric.Meter) FactoryOption {
	return func(f *Factory) {
		f.meter = meter
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedisClient uses an existing client instead of dialing one.
// The caller keeps ownership of the client.
func WithRedisClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a new factory
func NewFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials Redis when it is enabled. With fallback allowed a failed
// connection is logged and the factory continues in memory.
func (f *Factory) Connect(ctx context.Context) error {
	if f.client != nil {
		return nil
	}
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory caches and sessions")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory caches and sessions. "+
			"State will not be shared between instances.",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return nil
	}

	f.client = client
	f.closers = append(f.closers, client.Close)
	f.logger.Info("Connected to Redis", zap.String("addr", f.redisConfig.Addr()))
	return nil
}

// RedisClient returns the connected client, or nil when running in memory
func (f *Factory) RedisClient() redis.UniversalClient {
	return f.client
}

// UsesRedis reports whether Redis backs the created stores
func (f *Factory) UsesRedis() bool {
	return f.client != nil
}

// SessionStore creates the storefront session store
func (f *Factory) SessionStore() cart.SessionStore {
	if f.client != nil {
		return NewRedisSessionStore(f.client, f.cacheConfig.SessionTTL)
	}
	store := NewInMemorySessionStore(f.cacheConfig.SessionTTL, f.cacheConfig.CleanupInterval)
	f.closers = append(f.closers, store.Close)
	return store
}

func (f *Factory) cacheOptions() []CacheOption {
	return []CacheOption{
		WithTTL(f.cacheConfig.ListTTL),
		WithCleanupInterval(f.cacheConfig.CleanupInterval),
		WithCacheLogger(f.logger),
		WithMeter(f.meter),
	}
}

// Close releases the Redis client and stops in-memory cleanup loops
func (f *Factory) Close() error {
	var firstErr error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}

// NewCollectionCache creates a list cache for namespace from the factory
func NewCollectionCache[T any](f *Factory, namespace string) CollectionCache[T] {
	if f.client != nil {
		return NewRedisCollectionCache[T](f.client, namespace, f.cacheOptions()...)
	}
	c := NewInMemoryCollectionCache[T](namespace, f.cacheOptions()...)
	f.closers = append(f.closers, c.Close)
	return c
}

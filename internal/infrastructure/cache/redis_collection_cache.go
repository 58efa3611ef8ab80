package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCollectionCache implements CollectionCache in Redis.
// Keys embed a generation number; Invalidate bumps the generation so every
// older key becomes unreachable and expires on its own.
type RedisCollectionCache[T any] struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	counter   *hitCounter
	logger    *zap.Logger
}

// NewRedisCollectionCache creates a Redis-backed cache under "cache:<namespace>:"
func NewRedisCollectionCache[T any](client redis.UniversalClient, namespace string, opts ...CacheOption) *RedisCollectionCache[T] {
	o := defaultCacheOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &RedisCollectionCache[T]{
		client:    client,
		keyPrefix: "cache:" + namespace + ":",
		ttl:       o.ttl,
		counter:   newHitCounter(namespace, o.meter, o.logger),
		logger:    o.logger,
	}
}

func (c *RedisCollectionCache[T]) generationKey() string {
	return c.keyPrefix + "gen"
}

func (c *RedisCollectionCache[T]) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCollectionCache[T]) itemKey(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", c.keyPrefix, gen, key)
}

// Get returns the cached list for key in the current generation
func (c *RedisCollectionCache[T]) Get(ctx context.Context, key string) ([]T, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read cache generation: %w", err)
	}

	data, err := c.client.Get(ctx, c.itemKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.counter.record(ctx, false)
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("failed to get cached list: %w", err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("Dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, c.itemKey(gen, key))
		c.counter.record(ctx, false)
		return nil, gen, false, nil
	}
	c.counter.record(ctx, true)
	return items, gen, true, nil
}

// Set stores items under generation gen. A list from an older generation is
// skipped; one that races an Invalidate lands under a key Get no longer reads.
func (c *RedisCollectionCache[T]) Set(ctx context.Context, key string, gen int64, items []T) error {
	current, err := c.generation(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache generation: %w", err)
	}
	if current != gen {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal list: %w", err)
	}
	if err := c.client.Set(ctx, c.itemKey(gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached list: %w", err)
	}
	return nil
}

// Invalidate bumps the generation counter
func (c *RedisCollectionCache[T]) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

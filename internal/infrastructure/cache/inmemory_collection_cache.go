package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type collectionEntry[T any] struct {
	items     []T
	gen       int64
	expiresAt time.Time
}

// InMemoryCollectionCache implements CollectionCache with a sync.Map.
// Suitable for single-instance deployments and tests.
type InMemoryCollectionCache[T any] struct {
	entries   sync.Map // map[string]collectionEntry[T]
	gen       atomic.Int64
	writeMu   sync.Mutex // orders Set against Invalidate
	ttl       time.Duration
	counter   *hitCounter
	hits      atomic.Int64
	misses    atomic.Int64
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCollectionCache creates an in-memory cache and starts its cleanup loop
func NewInMemoryCollectionCache[T any](namespace string, opts ...CacheOption) *InMemoryCollectionCache[T] {
	o := defaultCacheOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &InMemoryCollectionCache[T]{
		ttl:      o.ttl,
		counter:  newHitCounter(namespace, o.meter, o.logger),
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop(o.cleanupInterval)
	return c
}

// Get returns a copy of the cached list when it is still fresh
func (c *InMemoryCollectionCache[T]) Get(ctx context.Context, key string) ([]T, int64, bool, error) {
	gen := c.gen.Load()
	v, ok := c.entries.Load(key)
	if ok {
		entry := v.(collectionEntry[T])
		if entry.gen == gen && time.Now().Before(entry.expiresAt) {
			c.hits.Add(1)
			c.counter.record(ctx, true)
			return append([]T(nil), entry.items...), gen, true, nil
		}
		c.entries.CompareAndDelete(key, v)
	}
	c.misses.Add(1)
	c.counter.record(ctx, false)
	return nil, gen, false, nil
}

// Set stores a copy of items unless the cache was invalidated after gen
func (c *InMemoryCollectionCache[T]) Set(_ context.Context, key string, gen int64, items []T) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if gen != c.gen.Load() {
		return nil
	}
	c.entries.Store(key, collectionEntry[T]{
		items:     append(make([]T, 0, len(items)), items...),
		gen:       gen,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

// Invalidate starts a new generation and drops all entries
func (c *InMemoryCollectionCache[T]) Invalidate(_ context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.gen.Add(1)
	c.entries.Clear()
	return nil
}

// Stats returns hit and miss counts
func (c *InMemoryCollectionCache[T]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryCollectionCache[T]) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryCollectionCache[T]) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryCollectionCache[T]) cleanup() {
	now := time.Now()
	c.entries.Range(func(key, value any) bool {
		if now.After(value.(collectionEntry[T]).expiresAt) {
			c.entries.CompareAndDelete(key, value)
		}
		return true
	})
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCollectionCache_GetSet(t *testing.T) {
	c := NewInMemoryCollectionCache[string]("products")
	defer c.Close()
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, "list:-created_date:500")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "list:-created_date:500", gen, []string{"a", "b"}))

	items, _, ok, err := c.Get(ctx, "list:-created_date:500")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, items)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryCollectionCache_ReturnsCopies(t *testing.T) {
	c := NewInMemoryCollectionCache[int]("orders")
	defer c.Close()
	ctx := context.Background()

	source := []int{1, 2, 3}
	require.NoError(t, c.Set(ctx, "k", 0, source))
	source[0] = 100

	items, _, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []int{1, 2, 3}, items)
	items[1] = 200

	again, _, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []int{1, 2, 3}, again)
}

func TestInMemoryCollectionCache_Expiry(t *testing.T) {
	c := NewInMemoryCollectionCache[string]("products", WithTTL(20*time.Millisecond), WithCleanupInterval(10*time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 0, []string{"x"}))
	time.Sleep(40 * time.Millisecond)

	_, _, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryCollectionCache_Invalidate(t *testing.T) {
	c := NewInMemoryCollectionCache[string]("products")
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 0, []string{"1"}))
	require.NoError(t, c.Set(ctx, "b", 0, []string{"2"}))
	require.NoError(t, c.Invalidate(ctx))

	_, _, okA, _ := c.Get(ctx, "a")
	_, _, okB, _ := c.Get(ctx, "b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestInMemoryCollectionCache_Concurrent(t *testing.T) {
	c := NewInMemoryCollectionCache[int]("products")
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, gen, _, _ := c.Get(ctx, "k")
			_ = c.Set(ctx, "k", gen, []int{n})
			if n%10 == 0 {
				_ = c.Invalidate(ctx)
			}
		}(i)
	}
	wg.Wait()
}

func TestInMemoryCollectionCache_StaleSetDropped(t *testing.T) {
	c := NewInMemoryCollectionCache[string]("products")
	defer c.Close()
	ctx := context.Background()

	_, loadedAt, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, "k", loadedAt, []string{"before write"}))

	_, gen, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "list loaded before the invalidation must not be served")
	assert.Equal(t, loadedAt+1, gen)

	require.NoError(t, c.Set(ctx, "k", gen, []string{"after write"}))
	items, _, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"after write"}, items)
}

func TestInMemoryCollectionCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryCollectionCache[int]("products")
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/cart"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionStore_RoundTrip(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour, time.Minute)
	defer store.Close()
	ctx := context.Background()

	session := cart.NewSession()
	productID := uuid.New()
	session.Cart.Add(cart.Item{ProductID: productID, Title: "Fern", Price: decimal.NewFromInt(200), Quantity: 2})
	session.Favorites.Toggle(productID)
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	require.Len(t, loaded.Cart.Items, 1)
	assert.Equal(t, 2, loaded.Cart.Items[0].Quantity)
	assert.True(t, loaded.Cart.Total().Equal(decimal.NewFromInt(400)))
	assert.True(t, loaded.Favorites.Contains(productID))
}

func TestInMemorySessionStore_IsolatesCopies(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour, time.Minute)
	defer store.Close()
	ctx := context.Background()

	session := cart.NewSession()
	require.NoError(t, store.Save(ctx, session))

	session.Cart.Add(cart.Item{ProductID: uuid.New(), Quantity: 1})

	loaded, err := store.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Cart.Items)
	assert.NotNil(t, loaded.Favorites.ProductIDs)
}

func TestInMemorySessionStore_NotFoundAndExpiry(t *testing.T) {
	store := NewInMemorySessionStore(20*time.Millisecond, 10*time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	_, err := store.Load(ctx, uuid.NewString())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	session := cart.NewSession()
	require.NoError(t, store.Save(ctx, session))
	time.Sleep(50 * time.Millisecond)

	_, err = store.Load(ctx, session.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 0, store.Size())
}

func TestInMemorySessionStore_Delete(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour, time.Minute)
	defer store.Close()
	ctx := context.Background()

	session := cart.NewSession()
	require.NoError(t, store.Save(ctx, session))
	require.NoError(t, store.Delete(ctx, session.ID))

	_, err := store.Load(ctx, session.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

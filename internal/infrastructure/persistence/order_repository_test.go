package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, repo *GormOrderRepository, name, phone string, total int64, status trade.OrderStatus, createdAt time.Time) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(trade.OrderPatch{
		CustomerName:    ptr(name),
		CustomerPhone:   ptr(phone),
		DeliveryAddress: ptr("Lenina 1"),
		Items: []trade.OrderItem{
			{ProductID: uuid.New(), Title: "Fern", Price: decimal.NewFromInt(total), Quantity: 1},
		},
		Total:  ptr(decimal.NewFromInt(total)),
		Status: ptr(status),
	})
	require.NoError(t, err)
	o.CreatedAt = createdAt
	o.UpdatedAt = createdAt
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func seedOrders(t *testing.T, repo *GormOrderRepository) []*trade.Order {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*trade.Order{
		createOrder(t, repo, "Anna Petrova", "+79001112233", 1000, trade.OrderStatusPending, base),
		createOrder(t, repo, "Boris", "+79004445566", 2500, trade.OrderStatusDelivered, base.Add(time.Hour)),
		createOrder(t, repo, "anna smirnova", "+79007778899", 500, trade.OrderStatusPending, base.Add(2*time.Hour)),
	}
}

func customerNames(orders []trade.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.CustomerName
	}
	return out
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	created := seedOrders(t, repo)[0]

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", found.CustomerName)
	assert.Nil(t, found.CustomerEmail)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Fern", found.Items[0].Title)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(1000)))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FilterCountSum(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	seedOrders(t, repo)

	all, err := repo.List(ctx, shared.DefaultOrderSpec(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"anna smirnova", "Boris", "Anna Petrova"}, customerNames(all))

	pending := trade.OrderCriteria{Status: trade.OrderStatusPending}
	byStatus, err := repo.Filter(ctx, pending, shared.ParseOrderSpec("-total"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna Petrova", "anna smirnova"}, customerNames(byStatus))

	byName, err := repo.Filter(ctx, trade.OrderCriteria{Query: "ANNA"}, shared.ParseOrderSpec("created_date"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna Petrova", "anna smirnova"}, customerNames(byName))

	byPhone, err := repo.Filter(ctx, trade.OrderCriteria{Query: "444"}, shared.DefaultOrderSpec(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Boris"}, customerNames(byPhone))

	count, err := repo.Count(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	sum, err := repo.SumTotal(ctx, trade.OrderCriteria{})
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(4000)), sum.String())

	sum, err = repo.SumTotal(ctx, trade.OrderCriteria{Status: trade.OrderStatusCancelled})
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestGormOrderRepository_Update(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := seedOrders(t, repo)[0]

	updated, err := repo.Update(ctx, o.ID, trade.OrderPatch{
		Status:        ptr(trade.OrderStatusShipped),
		CustomerEmail: ptr("anna@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusShipped, updated.Status)

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusShipped, stored.Status)
	require.NotNil(t, stored.CustomerEmail)
	assert.Equal(t, "anna@example.com", *stored.CustomerEmail)
	assert.Equal(t, "Anna Petrova", stored.CustomerName)

	_, err = repo.Update(ctx, o.ID, trade.OrderPatch{Status: ptr(trade.OrderStatus("lost"))})
	require.Error(t, err)

	_, err = repo.Update(ctx, uuid.New(), trade.OrderPatch{Notes: ptr("x")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_Delete(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	o := seedOrders(t, repo)[2]

	require.NoError(t, repo.Delete(ctx, o.ID))
	assert.ErrorIs(t, repo.Delete(ctx, o.ID), shared.ErrNotFound)
}

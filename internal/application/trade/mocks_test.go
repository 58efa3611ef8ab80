package trade

import (
	"context"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, order shared.OrderSpec, limit int) ([]trade.Order, error) {
	args := m.Called(ctx, order, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Filter(ctx context.Context, criteria trade.OrderCriteria, order shared.OrderSpec, limit int) ([]trade.Order, error) {
	args := m.Called(ctx, criteria, order, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, criteria trade.OrderCriteria) (int64, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SumTotal(ctx context.Context, criteria trade.OrderCriteria) (decimal.Decimal, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, id uuid.UUID, patch trade.OrderPatch) (*trade.Order, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderCache is a mock implementation of OrderCache
type MockOrderCache struct {
	mock.Mock
}

func (m *MockOrderCache) Get(ctx context.Context, key string) ([]trade.Order, int64, bool, error) {
	args := m.Called(ctx, key)
	items, _ := args.Get(0).([]trade.Order)
	gen, _ := args.Get(1).(int64)
	return items, gen, args.Bool(2), args.Error(3)
}

func (m *MockOrderCache) Set(ctx context.Context, key string, gen int64, items []trade.Order) error {
	args := m.Called(ctx, key, gen, items)
	return args.Error(0)
}

func (m *MockOrderCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

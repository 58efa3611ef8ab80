package storefront

import (
	"context"
	"testing"
	"time"

	appcatalog "github.com/greenshop/backend/internal/application/catalog"
	"github.com/greenshop/backend/internal/application/settings"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductSource is a mock implementation of ProductSource
type MockProductSource struct {
	mock.Mock
}

func (m *MockProductSource) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductSource) ByIDs(ctx context.Context, ids []uuid.UUID) ([]appcatalog.ProductResponse, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appcatalog.ProductResponse), args.Error(1)
}

// MockOrderPlacer is a mock implementation of OrderPlacer
type MockOrderPlacer struct {
	mock.Mock
}

func (m *MockOrderPlacer) Place(ctx context.Context, patch trade.OrderPatch) (*trade.Order, error) {
	args := m.Called(ctx, patch)
	if fn, ok := args.Get(0).(func(context.Context, trade.OrderPatch) *trade.Order); ok {
		return fn(ctx, patch), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

// MockSettingsSource is a mock implementation of PublicSettingsSource
type MockSettingsSource struct {
	mock.Mock
}

func (m *MockSettingsSource) Public(ctx context.Context) (settings.PublicSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.PublicSettings), args.Error(1)
}

func testProduct(title string, price int64) *catalog.Product {
	return &catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		Price:      decimal.NewFromInt(price),
		Category:   catalog.CategoryPlants,
		Condition:  catalog.ConditionNew,
		Images:     []string{"https://cdn.example.com/products/" + title + ".jpg"},
		Tags:       []string{},
		InStock:    true,
	}
}

type sessionFixture struct {
	svc      *SessionService
	store    *cache.InMemorySessionStore
	products *MockProductSource
	id       string
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()
	store := cache.NewInMemorySessionStore(time.Hour, time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	products := new(MockProductSource)
	return sessionFixture{
		svc:      NewSessionService(store, products, nil),
		store:    store,
		products: products,
		id:       uuid.NewString(),
	}
}

func (f sessionFixture) withProduct(p *catalog.Product) {
	f.products.On("GetProduct", mock.Anything, p.ID).Return(p, nil)
}

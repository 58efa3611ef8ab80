package catalog

import (
	"context"

	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ret reads return value i, tolerating an untyped nil
func ret[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	return ret[*catalog.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, order shared.OrderSpec, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, order, limit)
	return ret[[]catalog.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Filter(ctx context.Context, criteria catalog.ProductCriteria, order shared.OrderSpec, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, criteria, order, limit)
	return ret[[]catalog.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return ret[int64](args, 0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, id uuid.UUID, patch catalog.ProductPatch) (*catalog.Product, error) {
	args := m.Called(ctx, id, patch)
	return ret[*catalog.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductCache struct{ mock.Mock }

func (m *MockProductCache) Get(ctx context.Context, key string) ([]catalog.Product, int64, bool, error) {
	args := m.Called(ctx, key)
	return ret[[]catalog.Product](args, 0), ret[int64](args, 1), args.Bool(2), args.Error(3)
}

func (m *MockProductCache) Set(ctx context.Context, key string, gen int64, items []catalog.Product) error {
	return m.Called(ctx, key, gen, items).Error(0)
}

func (m *MockProductCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockImageStorage struct{ mock.Mock }

func (m *MockImageStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

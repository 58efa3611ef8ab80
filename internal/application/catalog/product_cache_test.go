package catalog

import (
	"context"
	"testing"

	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	listcache "github.com/greenshop/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_Catalog_CreateDuringLoadIsNotCached(t *testing.T) {
	lists := listcache.NewInMemoryCollectionCache[catalog.Product]("products")
	defer lists.Close()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, lists)
	ctx := context.Background()

	fern := newTestProduct("Fern", 400, catalog.CategoryPlants, true, false)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	// the first load reads its rows, then a create lands before it returns
	repo.On("List", mock.Anything, shared.DefaultOrderSpec(), CatalogListLimit).
		Return([]catalog.Product{}, nil).
		Run(func(mock.Arguments) {
			price := decimal.NewFromInt(400)
			_, err := svc.Create(ctx, CreateProductRequest{Title: "Fern", Price: &price, Category: "plants"})
			require.NoError(t, err)
		}).Once()
	repo.On("List", mock.Anything, shared.DefaultOrderSpec(), CatalogListLimit).
		Return([]catalog.Product{fern}, nil).Once()

	first, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := svc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Fern", second[0].Title)

	third, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 1)
	repo.AssertExpectations(t)
}

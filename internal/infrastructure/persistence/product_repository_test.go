package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func createProduct(t *testing.T, repo *GormProductRepository, title string, price int64, category catalog.Category, createdAt time.Time) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductPatch{
		Title:    ptr(title),
		Price:    ptr(decimal.NewFromInt(price)),
		Category: ptr(category),
		Tags:     []string{"green"},
	})
	require.NoError(t, err)
	p.CreatedAt = createdAt
	p.UpdatedAt = createdAt
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func seedProducts(t *testing.T, repo *GormProductRepository) []*catalog.Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*catalog.Product{
		createProduct(t, repo, "Monstera Deliciosa", 1500, catalog.CategoryPlants, base),
		createProduct(t, repo, "Tea Cup", 300, catalog.CategoryChina, base.Add(time.Hour)),
		createProduct(t, repo, "Ficus", 900, catalog.CategoryPlants, base.Add(2*time.Hour)),
	}
}

func productTitles(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	created := seedProducts(t, repo)[0]

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monstera Deliciosa", found.Title)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, []string{"green"}, found.Tags)
	assert.Equal(t, []string{}, found.Images)
	assert.Nil(t, found.OldPrice)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_ListOrderAndLimit(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	seedProducts(t, repo)

	newest, err := repo.List(ctx, shared.DefaultOrderSpec(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ficus", "Tea Cup", "Monstera Deliciosa"}, productTitles(newest))

	cheapest, err := repo.List(ctx, shared.ParseOrderSpec("price"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tea Cup", "Ficus"}, productTitles(cheapest))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormProductRepository_Filter(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	seeded := seedProducts(t, repo)

	plants, err := repo.Filter(ctx, catalog.ProductCriteria{Category: catalog.CategoryPlants}, shared.ParseOrderSpec("title"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ficus", "Monstera Deliciosa"}, productTitles(plants))

	byQuery, err := repo.Filter(ctx, catalog.ProductCriteria{Query: "CUP"}, shared.DefaultOrderSpec(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tea Cup"}, productTitles(byQuery))

	byID, err := repo.Filter(ctx, catalog.ProductCriteria{ID: &seeded[2].ID}, shared.DefaultOrderSpec(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ficus"}, productTitles(byID))

	inStock, err := repo.Filter(ctx, catalog.ProductCriteria{InStock: ptr(true)}, shared.DefaultOrderSpec(), 0)
	require.NoError(t, err)
	assert.Empty(t, inStock)
}

func TestGormProductRepository_UpdateWritesOnlyPatchedFields(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	p := seedProducts(t, repo)[0]

	updated, err := repo.Update(ctx, p.ID, catalog.ProductPatch{
		Price:    ptr(decimal.NewFromInt(1200)),
		OldPrice: ptr(decimal.NewFromInt(1500)),
		InStock:  ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.HasDiscount())

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monstera Deliciosa", stored.Title)
	assert.True(t, stored.Price.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, stored.OldPrice)
	assert.True(t, stored.OldPrice.Equal(decimal.NewFromInt(1500)))
	assert.True(t, stored.InStock)
	assert.Equal(t, []string{"green"}, stored.Tags)

	_, err = repo.Update(ctx, p.ID, catalog.ProductPatch{ClearOldPrice: true, Tags: []string{"a", " a ", "b"}})
	require.NoError(t, err)
	stored, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.OldPrice)
	assert.Equal(t, []string{"a", "b"}, stored.Tags)
}

func TestGormProductRepository_UpdateErrors(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	p := seedProducts(t, repo)[0]

	_, err := repo.Update(ctx, uuid.New(), catalog.ProductPatch{InStock: ptr(true)})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.Update(ctx, p.ID, catalog.ProductPatch{Price: ptr(decimal.NewFromInt(-1))})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
}

func TestGormProductRepository_Delete(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))
	ctx := context.Background()
	p := seedProducts(t, repo)[1]

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), shared.ErrNotFound)
}

func TestGormProductRepository_PostgresQueries(t *testing.T) {
	db := testutil.NewMockDB(t)
	mock := db.Mock
	repo := NewGormProductRepository(db.DB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE category = $1 AND (LOWER(title) LIKE $2 OR LOWER(description) LIKE $3) ORDER BY price DESC, id ASC LIMIT $4`)).
		WithArgs(catalog.CategoryChina, "%cup%", "%cup%", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "category", "images", "tags"}).
			AddRow(uuid.New().String(), "Tea Cup", "300.00", "china", `["https://cdn/x.jpg"]`, `[]`))

	products, err := repo.Filter(context.Background(),
		catalog.ProductCriteria{Category: catalog.CategoryChina, Query: "Cup"},
		shared.ParseOrderSpec("-price"), 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "https://cdn/x.jpg", products[0].PrimaryImage())

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), shared.ErrNotFound)

	db.ExpectationsWereMet(t)
}

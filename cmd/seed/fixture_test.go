package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/infrastructure/persistence"
	"github.com/greenshop/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestLoadFixture(t *testing.T) {
	fx, err := loadFixture(filepath.Join("testdata", "products.yaml"))
	require.NoError(t, err)
	require.Len(t, fx.Products, 3)

	patch, err := fx.Products[0].toPatch()
	require.NoError(t, err)
	assert.True(t, patch.Price.Equal(decimal.RequireFromString("2490")))
	require.NotNil(t, patch.OldPrice)
	assert.True(t, patch.OldPrice.Equal(decimal.RequireFromString("2990")))
	assert.True(t, *patch.InStock)
	assert.Equal(t, catalog.ConditionNew, *patch.Condition)

	patch, err = fx.Products[1].toPatch()
	require.NoError(t, err)
	assert.False(t, *patch.InStock)
	assert.Nil(t, patch.OldPrice)

	patch, err = fx.Products[2].toPatch()
	require.NoError(t, err)
	assert.Equal(t, catalog.ConditionLikeNew, *patch.Condition)
}

func TestLoadFixture_Errors(t *testing.T) {
	_, err := loadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products: [\n"), 0o644))
	_, err = loadFixture(path)
	assert.Error(t, err)

	_, err = fixtureProduct{Title: "x", Price: "abc"}.toPatch()
	assert.Error(t, err)
	_, err = fixtureProduct{Title: "x", Price: "10", OldPrice: "ten"}.toPatch()
	assert.Error(t, err)
}

func TestFakeProducts_AreValid(t *testing.T) {
	patches := fakeProducts(gofakeit.New(42), 50)
	require.Len(t, patches, 50)

	for _, patch := range patches {
		product, err := catalog.NewProduct(patch)
		require.NoError(t, err)
		assert.Contains(t, catalog.Subcategories(product.Category), product.Subcategory)
		if product.OldPrice != nil {
			assert.True(t, product.OldPrice.GreaterThan(product.Price))
		}
	}
}

func TestFakeProducts_Deterministic(t *testing.T) {
	a := fakeProducts(gofakeit.New(7), 5)
	b := fakeProducts(gofakeit.New(7), 5)

	for i := range a {
		assert.Equal(t, *a[i].Title, *b[i].Title)
		assert.True(t, a[i].Price.Equal(*b[i].Price))
	}
}

func newProductRepo(t *testing.T) *persistence.GormProductRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return persistence.NewGormProductRepository(db)
}

func TestSeedProducts(t *testing.T) {
	repo := newProductRepo(t)
	ctx := context.Background()

	created, err := seedProducts(ctx, repo, fakeProducts(gofakeit.New(1), 10))
	require.NoError(t, err)
	assert.Equal(t, 10, created)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, count)
}

func TestSeedProducts_StopsOnInvalid(t *testing.T) {
	repo := newProductRepo(t)

	good := fakeProducts(gofakeit.New(3), 1)[0]
	empty := ""
	bad := good
	bad.Title = &empty

	created, err := seedProducts(context.Background(), repo, []catalog.ProductPatch{good, bad, good})
	assert.Error(t, err)
	assert.Equal(t, 1, created)
}

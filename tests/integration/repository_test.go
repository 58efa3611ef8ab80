//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	settings.PasswordCost = bcrypt.MinCost
	code := m.Run()
	stopShared()
	os.Exit(code)
}

func newProduct(t *testing.T, title string, category catalog.Category, price string, mutate ...func(*catalog.ProductPatch)) *catalog.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	inStock := true
	patch := catalog.ProductPatch{Title: &title, Price: &p, Category: &category, InStock: &inStock}
	for _, fn := range mutate {
		fn(&patch)
	}
	product, err := catalog.NewProduct(patch)
	require.NoError(t, err)
	return product
}

func TestProductRepository_Postgres(t *testing.T) {
	testDB := shopDB(t)
	repo := persistence.NewGormProductRepository(testDB)
	ctx := context.Background()

	old := decimal.RequireFromString("2990")
	monstera := newProduct(t, "Монстера Деликатесная", catalog.CategoryPlants, "2490.50", func(p *catalog.ProductPatch) {
		p.OldPrice = &old
		p.Tags = []string{"Тропические", "крупные"}
		p.Images = []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}
		featured := true
		p.Featured = &featured
	})
	lamp := newProduct(t, "Настольная лампа", catalog.CategoryChina, "990", func(p *catalog.ProductPatch) {
		out := false
		p.InStock = &out
	})
	for _, p := range []*catalog.Product{monstera, lamp} {
		require.NoError(t, repo.Create(ctx, p))
	}

	t.Run("round trip keeps jsonb and decimals", func(t *testing.T) {
		found, err := repo.FindByID(ctx, monstera.ID)
		require.NoError(t, err)
		assert.Equal(t, monstera.Title, found.Title)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("2490.50")))
		require.NotNil(t, found.OldPrice)
		assert.True(t, found.OldPrice.Equal(old))
		assert.Equal(t, monstera.Images, found.Images)
		assert.Equal(t, monstera.Tags, found.Tags)
		assert.True(t, found.HasDiscount())
	})

	t.Run("filter is case-insensitive for cyrillic", func(t *testing.T) {
		found, err := repo.Filter(ctx, catalog.ProductCriteria{Query: "МОНСТЕРА"}, shared.DefaultOrderSpec(), 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, monstera.ID, found[0].ID)
	})

	t.Run("filter by flags and category", func(t *testing.T) {
		inStock := true
		found, err := repo.Filter(ctx, catalog.ProductCriteria{InStock: &inStock}, shared.DefaultOrderSpec(), 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, monstera.ID, found[0].ID)

		found, err = repo.Filter(ctx, catalog.ProductCriteria{Category: catalog.CategoryChina}, shared.DefaultOrderSpec(), 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, lamp.ID, found[0].ID)
	})

	t.Run("list orders by price", func(t *testing.T) {
		found, err := repo.List(ctx, shared.OrderSpec{Field: "price"}, 10)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, lamp.ID, found[0].ID)
	})

	t.Run("update clears old price", func(t *testing.T) {
		updated, err := repo.Update(ctx, monstera.ID, catalog.ProductPatch{ClearOldPrice: true})
		require.NoError(t, err)
		assert.Nil(t, updated.OldPrice)
		assert.Equal(t, monstera.Title, updated.Title)
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.Update(ctx, uuid.New(), catalog.ProductPatch{ClearOldPrice: true})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})

	t.Run("count and delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, lamp.ID))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func newOrder(t *testing.T, name, phone, total string, status trade.OrderStatus) *trade.Order {
	t.Helper()
	address := "Москва, ул. Ленина, 1"
	amount := decimal.RequireFromString(total)
	order, err := trade.NewOrder(trade.OrderPatch{
		CustomerName:    &name,
		CustomerPhone:   &phone,
		DeliveryAddress: &address,
		Total:           &amount,
		Status:          &status,
		Items: []trade.OrderItem{
			{ProductID: uuid.New(), Title: "Фикус", Price: amount, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return order
}

func TestOrderRepository_Postgres(t *testing.T) {
	testDB := shopDB(t)
	repo := persistence.NewGormOrderRepository(testDB)
	ctx := context.Background()

	anna := newOrder(t, "Анна", "+7 900 111-22-33", "1500.25", trade.OrderStatusDelivered)
	boris := newOrder(t, "Борис", "+7 900 444-55-66", "700", trade.OrderStatusPending)
	vera := newOrder(t, "Вера", "+7 900 777-88-99", "300", trade.OrderStatusDelivered)
	for _, o := range []*trade.Order{anna, boris, vera} {
		require.NoError(t, repo.Create(ctx, o))
	}

	t.Run("items survive as jsonb", func(t *testing.T) {
		found, err := repo.FindByID(ctx, anna.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Фикус", found.Items[0].Title)
		assert.True(t, found.Total.Equal(decimal.RequireFromString("1500.25")))
	})

	t.Run("sum and count by status", func(t *testing.T) {
		delivered := trade.OrderCriteria{Status: trade.OrderStatusDelivered}
		sum, err := repo.SumTotal(ctx, delivered)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.RequireFromString("1800.25")), sum.String())

		count, err := repo.Count(ctx, trade.OrderCriteria{Status: trade.OrderStatusPending})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		sum, err = repo.SumTotal(ctx, trade.OrderCriteria{Status: trade.OrderStatusCancelled})
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("search by name or phone", func(t *testing.T) {
		found, err := repo.Filter(ctx, trade.OrderCriteria{Query: "борис"}, shared.DefaultOrderSpec(), 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, boris.ID, found[0].ID)

		found, err = repo.Filter(ctx, trade.OrderCriteria{Query: "777"}, shared.DefaultOrderSpec(), 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, vera.ID, found[0].ID)
	})

	t.Run("status check constraint", func(t *testing.T) {
		err := testDB.Exec("UPDATE orders SET status = 'lost' WHERE id = ?", anna.ID).Error
		assert.Error(t, err)
	})
}

func TestSettingsRepository_Postgres(t *testing.T) {
	testDB := shopDB(t)
	repo := persistence.NewGormSettingsRepository(testDB)
	ctx := context.Background()

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	name := "Green Shop"
	password := "secret-pass"
	s, err := settings.New(settings.Patch{ShopName: &name, AdminPassword: &password})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, s))

	telegram := "@greenshop"
	phone := "+7 900 000-00-00"
	_, err = repo.Update(ctx, s.ID, settings.Patch{Telegram: &telegram})
	require.NoError(t, err)
	// s still carries no phone; a full-row write from it would lose the next update
	_, err = repo.Update(ctx, s.ID, settings.Patch{ContactPhone: &phone})
	require.NoError(t, err)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Green Shop", stored.ShopName)
	assert.Equal(t, "@greenshop", stored.Telegram)
	assert.Equal(t, phone, stored.ContactPhone)
	assert.True(t, stored.VerifyPassword("secret-pass"))
}

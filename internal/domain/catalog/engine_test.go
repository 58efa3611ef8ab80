package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productOpt func(*Product)

func withCategory(c Category) productOpt { return func(p *Product) { p.Category = c } }
func withSub(s string) productOpt        { return func(p *Product) { p.Subcategory = s } }
func withCondition(c Condition) productOpt {
	return func(p *Product) { p.Condition = c }
}
func inStock() productOpt  { return func(p *Product) { p.InStock = true } }
func featured() productOpt { return func(p *Product) { p.Featured = true } }
func withTags(tags ...string) productOpt {
	return func(p *Product) { p.Tags = tags }
}
func withDescription(d string) productOpt { return func(p *Product) { p.Description = d } }

func makeProduct(title string, price int64, opts ...productOpt) Product {
	p := Product{
		Title:     title,
		Price:     decimal.NewFromInt(price),
		Category:  CategoryPlants,
		Condition: ConditionNew,
		Images:    []string{},
		Tags:      []string{},
	}
	p.ID = uuid.New()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func titles(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func unfiltered() Query {
	return Query{Filters: FilterState{}, Sort: SortNewest}
}

func TestApply_ExampleScenario(t *testing.T) {
	products := []Product{
		makeProduct("one", 100, withCategory(CategoryPlants), inStock()),
		makeProduct("two", 50, withCategory(CategoryChina)),
	}
	filters := NewFilterState()
	filters.Categories = []Category{CategoryPlants}
	filters.InStockOnly = true

	result := Apply(products, Query{Filters: filters})

	assert.Equal(t, []string{"one"}, titles(result))
}

func TestApply_EmptyInput(t *testing.T) {
	result := Apply(nil, Query{Search: "x", Filters: NewFilterState(), Sort: SortPriceAsc})
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestApply_Search(t *testing.T) {
	products := []Product{
		makeProduct("Фикус Бенджамина", 1),
		makeProduct("Lamp", 2, withDescription("Warm LIGHT for a desk")),
		makeProduct("Mug", 3, withTags("ceramic", "Kitchen")),
		makeProduct("Chair", 4),
	}

	tests := []struct {
		name     string
		search   string
		expected []string
	}{
		{"blank query keeps all", "   ", []string{"Фикус Бенджамина", "Lamp", "Mug", "Chair"}},
		{"matches title case-insensitive", "фикус", []string{"Фикус Бенджамина"}},
		{"matches description", "light", []string{"Lamp"}},
		{"matches tag", "kitchen", []string{"Mug"}},
		{"no match", "sofa", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := unfiltered()
			q.Search = tt.search
			assert.Equal(t, tt.expected, titles(Apply(products, q)))
		})
	}
}

func TestApply_SetFilters(t *testing.T) {
	products := []Product{
		makeProduct("a", 10, withCategory(CategoryPlants), withSub("Кактусы"), withCondition(ConditionNew)),
		makeProduct("b", 20, withCategory(CategoryChina), withSub("Гаджеты"), withCondition(ConditionGood)),
		makeProduct("c", 30, withCategory(CategoryPersonal), withSub("Книги"), withCondition(ConditionFair)),
	}

	t.Run("categories", func(t *testing.T) {
		q := unfiltered()
		q.Filters.Categories = []Category{CategoryChina, CategoryPersonal}
		assert.Equal(t, []string{"b", "c"}, titles(Apply(products, q)))
	})

	t.Run("subcategories", func(t *testing.T) {
		q := unfiltered()
		q.Filters.Subcategories = []string{"Кактусы"}
		assert.Equal(t, []string{"a"}, titles(Apply(products, q)))
	})

	t.Run("conditions", func(t *testing.T) {
		q := unfiltered()
		q.Filters.Conditions = []Condition{ConditionGood, ConditionFair}
		assert.Equal(t, []string{"b", "c"}, titles(Apply(products, q)))
	})
}

func TestApply_PriceRangeInclusive(t *testing.T) {
	products := []Product{
		makeProduct("cheap", 10),
		makeProduct("mid", 50),
		makeProduct("top", 150000),
	}

	q := unfiltered()
	q.Filters.PriceRange = &PriceRange{Min: decimal.NewFromInt(10), Max: MaxPrice(products)}

	assert.Equal(t, []string{"cheap", "mid", "top"}, titles(Apply(products, q)))

	q.Filters.PriceRange = &PriceRange{Min: decimal.NewFromInt(11), Max: decimal.NewFromInt(50)}
	assert.Equal(t, []string{"mid"}, titles(Apply(products, q)))
}

func TestApply_Sort(t *testing.T) {
	products := []Product{
		makeProduct("p300", 300),
		makeProduct("p100", 100, featured()),
		makeProduct("p0", 0),
		makeProduct("p200", 200, featured()),
	}

	t.Run("newest keeps input order", func(t *testing.T) {
		assert.Equal(t, []string{"p300", "p100", "p0", "p200"}, titles(Apply(products, unfiltered())))
	})

	t.Run("price ascending and descending are reverses", func(t *testing.T) {
		q := unfiltered()
		q.Sort = SortPriceAsc
		asc := titles(Apply(products, q))
		q.Sort = SortPriceDesc
		desc := titles(Apply(products, q))

		assert.Equal(t, []string{"p0", "p100", "p200", "p300"}, asc)
		for i := range asc {
			assert.Equal(t, asc[i], desc[len(desc)-1-i])
		}
	})

	t.Run("popular puts featured first and is stable", func(t *testing.T) {
		q := unfiltered()
		q.Sort = SortPopular
		assert.Equal(t, []string{"p100", "p200", "p300", "p0"}, titles(Apply(products, q)))
	})

	t.Run("does not reorder input", func(t *testing.T) {
		q := unfiltered()
		q.Sort = SortPriceAsc
		_ = Apply(products, q)
		assert.Equal(t, "p300", products[0].Title)
	})
}

func TestApply_ResultIsSubset(t *testing.T) {
	products := []Product{
		makeProduct("a", 5, inStock(), withTags("x")),
		makeProduct("b", 15, withCategory(CategoryChina)),
		makeProduct("c", 25, inStock(), featured()),
	}
	ids := make(map[uuid.UUID]bool)
	for _, p := range products {
		ids[p.ID] = true
	}

	queries := []Query{
		unfiltered(),
		{Search: "a", Filters: NewFilterState(), Sort: SortPopular},
		{Filters: FilterState{InStockOnly: true}, Sort: SortPriceDesc},
		{Filters: FilterState{Categories: []Category{CategoryChina}}},
	}
	for _, q := range queries {
		for _, p := range Apply(products, q) {
			assert.True(t, ids[p.ID])
		}
	}
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSortKey("price_asc"))
	assert.Equal(t, SortPopular, ParseSortKey(" popular "))
	assert.Equal(t, SortNewest, ParseSortKey(""))
	assert.Equal(t, SortNewest, ParseSortKey("rating"))
}

func TestHomeSelections(t *testing.T) {
	products := []Product{
		makeProduct("f-out", 1, featured()),
		makeProduct("f-in", 2, featured(), inStock()),
		makeProduct("plain-in", 3, inStock()),
		makeProduct("plain-out", 4),
	}

	assert.Equal(t, []string{"f-in"}, titles(Featured(products, 8)))
	assert.Equal(t, []string{"f-in", "plain-in"}, titles(NewArrivals(products, 4)))
	assert.Equal(t, []string{"f-in"}, titles(NewArrivals(products, 1)))
}

func TestRelated(t *testing.T) {
	target := makeProduct("target", 1, withCategory(CategoryChina))
	products := []Product{
		target,
		makeProduct("same1", 2, withCategory(CategoryChina)),
		makeProduct("other", 3, withCategory(CategoryPlants)),
		makeProduct("same2", 4, withCategory(CategoryChina)),
	}

	assert.Equal(t, []string{"same1", "same2"}, titles(Related(products, &target, 4)))
	assert.Equal(t, []string{"same1"}, titles(Related(products, &target, 1)))
}

func TestSelectByIDs(t *testing.T) {
	products := []Product{makeProduct("a", 1), makeProduct("b", 2), makeProduct("c", 3)}

	selected := SelectByIDs(products, []uuid.UUID{products[2].ID, products[0].ID, uuid.New()})
	assert.Equal(t, []string{"a", "c"}, titles(selected))
	assert.Empty(t, SelectByIDs(products, nil))
}

func TestBuildMetadata(t *testing.T) {
	products := []Product{
		makeProduct("a", 40, withCategory(CategoryPlants), withSub("Кактусы"), inStock()),
		makeProduct("b", 15, withCategory(CategoryPlants), withSub("Кактусы")),
		makeProduct("c", 25, withCategory(CategoryChina), withSub("Гаджеты"), inStock()),
	}

	meta := BuildMetadata(products)

	assert.Equal(t, Availability{InStock: 2, OutOfStock: 1}, meta.Availability)
	require.Len(t, meta.Categories, 3)
	assert.Equal(t, CategoryPlants, meta.Categories[0].Category)
	assert.Equal(t, 2, meta.Categories[0].Count)
	for _, sub := range meta.Categories[0].Subcategories {
		if sub.Name == "Кактусы" {
			assert.Equal(t, 2, sub.Count)
		}
	}
	assert.Equal(t, 0, meta.Categories[2].Count)
	assert.True(t, meta.PriceRange.Min.Equal(decimal.NewFromInt(15)))
	assert.True(t, meta.PriceRange.Max.Equal(DefaultMaxPrice))
}

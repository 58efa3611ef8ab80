package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultMaxPrice is the upper bound of the price slider when no product is more expensive.
var DefaultMaxPrice = decimal.NewFromInt(100000)

// PriceRange is an inclusive [Min, Max] price interval
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// DefaultPriceRange returns [0, DefaultMaxPrice]
func DefaultPriceRange() PriceRange {
	return PriceRange{Min: decimal.Zero, Max: DefaultMaxPrice}
}

// Contains reports whether price lies within the range, bounds included
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

// FilterState holds the storefront filter selection.
// A nil PriceRange disables price filtering.
type FilterState struct {
	Categories    []Category
	Subcategories []string
	Conditions    []Condition
	PriceRange    *PriceRange
	InStockOnly   bool
}

// NewFilterState returns an empty selection with the default price range
func NewFilterState() FilterState {
	r := DefaultPriceRange()
	return FilterState{
		Categories:    []Category{},
		Subcategories: []string{},
		Conditions:    []Condition{},
		PriceRange:    &r,
	}
}

// ToggleCategory adds or removes a category. Any subcategory selection is reset.
func (f *FilterState) ToggleCategory(c Category) {
	if i := slices.Index(f.Categories, c); i >= 0 {
		f.Categories = slices.Delete(slices.Clone(f.Categories), i, i+1)
	} else {
		f.Categories = append(slices.Clone(f.Categories), c)
	}
	f.Subcategories = []string{}
}

// SelectCategories replaces the category selection. Any subcategory selection is reset.
func (f *FilterState) SelectCategories(categories []Category) {
	f.Categories = slices.Clone(categories)
	f.Subcategories = []string{}
}

// ToggleSubcategory adds or removes a subcategory
func (f *FilterState) ToggleSubcategory(sub string) {
	if i := slices.Index(f.Subcategories, sub); i >= 0 {
		f.Subcategories = slices.Delete(slices.Clone(f.Subcategories), i, i+1)
		return
	}
	f.Subcategories = append(slices.Clone(f.Subcategories), sub)
}

// ToggleCondition adds or removes a condition
func (f *FilterState) ToggleCondition(c Condition) {
	if i := slices.Index(f.Conditions, c); i >= 0 {
		f.Conditions = slices.Delete(slices.Clone(f.Conditions), i, i+1)
		return
	}
	f.Conditions = append(slices.Clone(f.Conditions), c)
}

// Normalize drops subcategories that no selected category offers
func (f FilterState) Normalize() FilterState {
	available := AvailableSubcategories(f.Categories)
	kept := make([]string, 0, len(f.Subcategories))
	for _, sub := range f.Subcategories {
		if slices.Contains(available, sub) && !slices.Contains(kept, sub) {
			kept = append(kept, sub)
		}
	}
	f.Subcategories = kept
	return f
}

// Reset clears every selection and opens the price range up to maxPrice
func (f FilterState) Reset(maxPrice decimal.Decimal) FilterState {
	reset := NewFilterState()
	reset.PriceRange.Max = maxPrice
	return reset
}

// MaxPrice returns the highest product price, never below DefaultMaxPrice
func MaxPrice(products []Product) decimal.Decimal {
	highest := DefaultMaxPrice
	for i := range products {
		if products[i].Price.GreaterThan(highest) {
			highest = products[i].Price
		}
	}
	return highest
}

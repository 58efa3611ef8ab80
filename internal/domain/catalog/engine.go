package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortKey selects the ordering applied at the end of the catalog pipeline
type SortKey string

const (
	// SortNewest keeps the input order, which is already newest first
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	// SortPopular puts featured products first
	SortPopular SortKey = "popular"
)

// SortKeys lists the supported sort keys
var SortKeys = []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortPopular}

// ParseSortKey maps a raw value to a SortKey, falling back to SortNewest
func ParseSortKey(raw string) SortKey {
	key := SortKey(strings.TrimSpace(raw))
	if slices.Contains(SortKeys, key) {
		return key
	}
	return SortNewest
}

// Query is the full catalog selection: free-text search, filters and sort.
type Query struct {
	Search  string
	Filters FilterState
	Sort    SortKey
}

// Apply narrows and orders products according to q.
// The input slice is never modified; the result is always a subset of the input
// and ties keep their input order.
func Apply(products []Product, q Query) []Product {
	result := make([]Product, 0, len(products))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	for i := range products {
		p := &products[i]
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if len(q.Filters.Categories) > 0 && !slices.Contains(q.Filters.Categories, p.Category) {
			continue
		}
		if len(q.Filters.Subcategories) > 0 && !slices.Contains(q.Filters.Subcategories, p.Subcategory) {
			continue
		}
		if len(q.Filters.Conditions) > 0 && !slices.Contains(q.Filters.Conditions, p.Condition) {
			continue
		}
		if q.Filters.PriceRange != nil && !q.Filters.PriceRange.Contains(p.Price) {
			continue
		}
		if q.Filters.InStockOnly && !p.InStock {
			continue
		}
		result = append(result, *p)
	}

	sortProducts(result, q.Sort)
	return result
}

func matchesSearch(p *Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func sortProducts(products []Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	case SortPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Featured && !products[j].Featured
		})
	}
}

// Featured returns up to n products that are both featured and in stock
func Featured(products []Product, n int) []Product {
	return take(products, n, func(p *Product) bool { return p.Featured && p.InStock })
}

// NewArrivals returns up to n in-stock products, keeping input order
func NewArrivals(products []Product, n int) []Product {
	return take(products, n, func(p *Product) bool { return p.InStock })
}

// Related returns up to n products sharing the category of target, target excluded
func Related(products []Product, target *Product, n int) []Product {
	return take(products, n, func(p *Product) bool {
		return p.Category == target.Category && p.ID != target.ID
	})
}

// SelectByIDs returns the products whose ID is in ids, keeping product order
func SelectByIDs(products []Product, ids []uuid.UUID) []Product {
	if len(ids) == 0 {
		return []Product{}
	}
	return take(products, len(products), func(p *Product) bool { return slices.Contains(ids, p.ID) })
}

func take(products []Product, n int, keep func(*Product) bool) []Product {
	result := make([]Product, 0)
	for i := range products {
		if len(result) >= n {
			break
		}
		if keep(&products[i]) {
			result = append(result, products[i])
		}
	}
	return result
}

// Availability counts products by stock state
type Availability struct {
	InStock    int `json:"in_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// SubcategoryCount is a subcategory with the number of products in it
type SubcategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryCount is a category with its product count and subcategory breakdown
type CategoryCount struct {
	Category      Category           `json:"category"`
	Count         int                `json:"count"`
	Subcategories []SubcategoryCount `json:"subcategories"`
}

// Metadata summarizes a product collection for building filter controls
type Metadata struct {
	Availability Availability    `json:"availability"`
	Categories   []CategoryCount `json:"categories"`
	PriceRange   PriceRange      `json:"price_range"`
}

// BuildMetadata computes filter metadata over products.
// The price range spans the cheapest product up to MaxPrice.
func BuildMetadata(products []Product) Metadata {
	meta := Metadata{Categories: make([]CategoryCount, 0, len(Categories))}

	perCategory := make(map[Category]int)
	perSub := make(map[Category]map[string]int)
	minPrice := decimal.Zero
	for i := range products {
		p := &products[i]
		if p.InStock {
			meta.Availability.InStock++
		} else {
			meta.Availability.OutOfStock++
		}
		perCategory[p.Category]++
		if perSub[p.Category] == nil {
			perSub[p.Category] = make(map[string]int)
		}
		perSub[p.Category][p.Subcategory]++
		if i == 0 || p.Price.LessThan(minPrice) {
			minPrice = p.Price
		}
	}

	for _, c := range Categories {
		cc := CategoryCount{Category: c, Count: perCategory[c], Subcategories: make([]SubcategoryCount, 0)}
		for _, sub := range subcategories[c] {
			cc.Subcategories = append(cc.Subcategories, SubcategoryCount{Name: sub, Count: perSub[c][sub]})
		}
		meta.Categories = append(meta.Categories, cc)
	}
	meta.PriceRange = PriceRange{Min: minPrice, Max: MaxPrice(products)}
	return meta
}

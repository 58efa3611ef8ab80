package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Title       string           `json:"title" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Price       *decimal.Decimal `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price"`
	Category    string           `json:"category" binding:"required,oneof=plants china personal"`
	Subcategory string           `json:"subcategory" binding:"max=100"`
	Images      []string         `json:"images" binding:"omitempty,dive,max=2048"`
	InStock     bool             `json:"in_stock"`
	Featured    bool             `json:"featured"`
	Condition   string           `json:"condition" binding:"omitempty,oneof=new like_new good fair"`
	Tags        []string         `json:"tags" binding:"omitempty,dive,max=50"`
}

// ToPatch converts the request into a domain patch
func (r CreateProductRequest) ToPatch() catalog.ProductPatch {
	category := catalog.Category(r.Category)
	patch := catalog.ProductPatch{
		Title:       &r.Title,
		Description: &r.Description,
		Price:       r.Price,
		OldPrice:    r.OldPrice,
		Category:    &category,
		Subcategory: &r.Subcategory,
		Images:      r.Images,
		InStock:     &r.InStock,
		Featured:    &r.Featured,
		Tags:        r.Tags,
	}
	if r.Condition != "" {
		condition := catalog.Condition(r.Condition)
		patch.Condition = &condition
	}
	return patch
}

// UpdateProductRequest represents a partial product update.
// Absent fields are left untouched; ClearOldPrice removes the discount.
type UpdateProductRequest struct {
	Title         *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price"`
	OldPrice      *decimal.Decimal `json:"old_price"`
	ClearOldPrice bool             `json:"clear_old_price"`
	Category      *string          `json:"category" binding:"omitempty,oneof=plants china personal"`
	Subcategory   *string          `json:"subcategory" binding:"omitempty,max=100"`
	Images        []string         `json:"images" binding:"omitempty,dive,max=2048"`
	InStock       *bool            `json:"in_stock"`
	Featured      *bool            `json:"featured"`
	Condition     *string          `json:"condition" binding:"omitempty,oneof=new like_new good fair"`
	Tags          []string         `json:"tags" binding:"omitempty,dive,max=50"`
}

// ToPatch converts the request into a domain patch
func (r UpdateProductRequest) ToPatch() catalog.ProductPatch {
	patch := catalog.ProductPatch{
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		OldPrice:      r.OldPrice,
		ClearOldPrice: r.ClearOldPrice,
		Subcategory:   r.Subcategory,
		Images:        r.Images,
		InStock:       r.InStock,
		Featured:      r.Featured,
		Tags:          r.Tags,
	}
	if r.Category != nil {
		category := catalog.Category(*r.Category)
		patch.Category = &category
	}
	if r.Condition != nil {
		condition := catalog.Condition(*r.Condition)
		patch.Condition = &condition
	}
	return patch
}

// AdminProductListFilter narrows the admin product list
type AdminProductListFilter struct {
	Search   string `form:"search" binding:"max=100"`
	Category string `form:"category" binding:"omitempty,oneof=plants china personal"`
	Featured *bool  `form:"featured"`
	InStock  *bool  `form:"in_stock"`
	OrderBy  string `form:"order_by"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// BrowseRequest is the storefront catalog query
type BrowseRequest struct {
	Search        string   `form:"q" binding:"max=100"`
	Categories    []string `form:"category"`
	Subcategories []string `form:"subcategory"`
	Conditions    []string `form:"condition"`
	MinPrice      string   `form:"min_price"`
	MaxPrice      string   `form:"max_price"`
	InStockOnly   bool     `form:"in_stock_only"`
	Sort          string   `form:"sort"`
}

// ToQuery converts the request into an engine query. Repeated and comma-separated
// values are both accepted for the set filters. Unknown categories and conditions
// are rejected; a price bound that is absent falls back to the default range.
func (r BrowseRequest) ToQuery(maxPrice decimal.Decimal) (catalog.Query, error) {
	filters := catalog.NewFilterState()

	for _, raw := range splitValues(r.Categories) {
		c := catalog.Category(raw)
		if !c.IsValid() {
			return catalog.Query{}, shared.NewDomainError("INVALID_CATEGORY", "Unknown category: "+raw)
		}
		filters.Categories = append(filters.Categories, c)
	}
	filters.Subcategories = splitValues(r.Subcategories)
	for _, raw := range splitValues(r.Conditions) {
		c := catalog.Condition(raw)
		if !c.IsValid() {
			return catalog.Query{}, shared.NewDomainError("INVALID_CONDITION", "Unknown condition: "+raw)
		}
		filters.Conditions = append(filters.Conditions, c)
	}

	filters.PriceRange.Max = maxPrice
	if r.MinPrice != "" {
		v, err := decimal.NewFromString(r.MinPrice)
		if err != nil {
			return catalog.Query{}, shared.NewDomainError("INVALID_PRICE", "Invalid min_price")
		}
		filters.PriceRange.Min = v
	}
	if r.MaxPrice != "" {
		v, err := decimal.NewFromString(r.MaxPrice)
		if err != nil {
			return catalog.Query{}, shared.NewDomainError("INVALID_PRICE", "Invalid max_price")
		}
		filters.PriceRange.Max = v
	}
	filters.InStockOnly = r.InStockOnly

	return catalog.Query{
		Search:  r.Search,
		Filters: filters,
		Sort:    catalog.ParseSortKey(r.Sort),
	}, nil
}

func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price"`
	HasDiscount bool             `json:"has_discount"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	Images      []string         `json:"images"`
	InStock     bool             `json:"in_stock"`
	Featured    bool             `json:"featured"`
	Condition   string           `json:"condition"`
	Tags        []string         `json:"tags"`
	CreatedDate time.Time        `json:"created_date"`
	UpdatedDate time.Time        `json:"updated_date"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		HasDiscount: p.HasDiscount(),
		Category:    string(p.Category),
		Subcategory: p.Subcategory,
		Images:      images,
		InStock:     p.InStock,
		Featured:    p.Featured,
		Condition:   string(p.Condition),
		Tags:        tags,
		CreatedDate: p.CreatedAt,
		UpdatedDate: p.UpdatedAt,
	}
}

// ToProductResponses converts a list of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// BrowseMeta describes a storefront catalog result
type BrowseMeta struct {
	Total                  int             `json:"total"`
	MaxPrice               decimal.Decimal `json:"max_price"`
	AvailableSubcategories []string        `json:"available_subcategories"`
	Sort                   string          `json:"sort"`
}

// BrowseResponse is the storefront catalog result
type BrowseResponse struct {
	Products []ProductResponse `json:"products"`
	Meta     BrowseMeta        `json:"meta"`
}

// HomeResponse holds the home page selections
type HomeResponse struct {
	Featured    []ProductResponse `json:"featured"`
	NewArrivals []ProductResponse `json:"new_arrivals"`
}

package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents an item listed in the storefront
type Product struct {
	shared.BaseEntity
	Title       string
	Description string
	Price       decimal.Decimal
	OldPrice    *decimal.Decimal // price before discount, nil when not discounted
	Category    Category
	Subcategory string
	Images      []string
	InStock     bool
	Featured    bool
	Condition   Condition
	Tags        []string
}

// ProductPatch carries writable product fields. Nil fields are left untouched on update
// and take their defaults on create.
type ProductPatch struct {
	Title         *string
	Description   *string
	Price         *decimal.Decimal
	OldPrice      *decimal.Decimal
	ClearOldPrice bool
	Category      *Category
	Subcategory   *string
	Images        []string
	InStock       *bool
	Featured      *bool
	Condition     *Condition
	Tags          []string
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.OldPrice == nil &&
		!p.ClearOldPrice && p.Category == nil && p.Subcategory == nil && p.Images == nil &&
		p.InStock == nil && p.Featured == nil && p.Condition == nil && p.Tags == nil
}

// Validate checks every field present in the patch
func (p ProductPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Price != nil && p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if p.OldPrice != nil && p.OldPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Old price cannot be negative")
	}
	if p.Category != nil && !p.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown category: "+string(*p.Category))
	}
	if p.Condition != nil && !p.Condition.IsValid() {
		return shared.NewDomainError("INVALID_CONDITION", "Unknown condition: "+string(*p.Condition))
	}
	return nil
}

// Normalized returns a copy with tags and images cleaned up
func (p ProductPatch) Normalized() ProductPatch {
	if p.Tags != nil {
		p.Tags = NormalizeTags(p.Tags)
	}
	if p.Images != nil {
		p.Images = normalizeImages(p.Images)
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	return p
}

// NewProduct creates a product from a patch, applying defaults for absent fields.
// The title and category are required.
func NewProduct(patch ProductPatch) (*Product, error) {
	if patch.Title == nil {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if patch.Category == nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	patch = patch.Normalized()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	product := &Product{
		BaseEntity: shared.NewBaseEntity(),
		Price:      decimal.Zero,
		Condition:  ConditionNew,
		Images:     []string{},
		Tags:       []string{},
	}
	product.apply(patch)
	return product, nil
}

// Apply validates and merges a patch into the product
func (p *Product) Apply(patch ProductPatch) error {
	patch = patch.Normalized()
	if err := patch.Validate(); err != nil {
		return err
	}
	p.apply(patch)
	p.Touch()
	return nil
}

func (p *Product) apply(patch ProductPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ClearOldPrice {
		p.OldPrice = nil
	} else if patch.OldPrice != nil {
		old := *patch.OldPrice
		p.OldPrice = &old
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		p.Subcategory = *patch.Subcategory
	}
	if patch.Images != nil {
		p.Images = append([]string{}, patch.Images...)
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.Condition != nil {
		p.Condition = *patch.Condition
	}
	if patch.Tags != nil {
		p.Tags = append([]string{}, patch.Tags...)
	}
}

// Normalize makes sure slice fields are never nil and the condition has a value.
// Rows written by older clients may carry NULL in these columns.
func (p *Product) Normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Condition == "" {
		p.Condition = ConditionNew
	}
}

// HasDiscount reports whether the product shows a crossed-out old price
func (p *Product) HasDiscount() bool {
	return p.OldPrice != nil && p.OldPrice.GreaterThan(p.Price)
}

// PrimaryImage returns the first image URL or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// NormalizeTags trims tags, drops empty ones and removes duplicates keeping first occurrence.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

func normalizeImages(images []string) []string {
	result := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			result = append(result, img)
		}
	}
	return result
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if utf8.RuneCountInString(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot exceed 200 characters")
	}
	return nil
}

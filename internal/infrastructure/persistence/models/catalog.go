package models

import (
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Title       string              `gorm:"type:varchar(200);not null"`
	Description string              `gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	OldPrice    decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Category    catalog.Category    `gorm:"type:varchar(20);not null;index"`
	Subcategory string              `gorm:"type:varchar(100);not null;default:''"`
	Images      []string            `gorm:"type:jsonb;serializer:json"`
	InStock     bool                `gorm:"not null;default:false;index"`
	Featured    bool                `gorm:"not null;default:false"`
	Condition   catalog.Condition   `gorm:"type:varchar(20);not null;default:'new'"`
	Tags        []string            `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		Subcategory: m.Subcategory,
		Images:      m.Images,
		InStock:     m.InStock,
		Featured:    m.Featured,
		Condition:   m.Condition,
		Tags:        m.Tags,
	}
	if m.OldPrice.Valid {
		old := m.OldPrice.Decimal
		p.OldPrice = &old
	}
	p.Normalize()
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Title = p.Title
	m.Description = p.Description
	m.Price = p.Price
	m.OldPrice = nullDecimal(p.OldPrice)
	m.Category = p.Category
	m.Subcategory = p.Subcategory
	m.Images = nonNilStrings(p.Images)
	m.InStock = p.InStock
	m.Featured = p.Featured
	m.Condition = p.Condition
	m.Tags = nonNilStrings(p.Tags)
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductPatchColumns maps the fields present in patch to column values taken
// from the already patched product p. Only these columns are written on update.
func ProductPatchColumns(p *catalog.Product, patch catalog.ProductPatch) map[string]any {
	cols := map[string]any{"updated_at": p.UpdatedAt}
	if patch.Title != nil {
		cols["title"] = p.Title
	}
	if patch.Description != nil {
		cols["description"] = p.Description
	}
	if patch.Price != nil {
		cols["price"] = p.Price
	}
	if patch.OldPrice != nil || patch.ClearOldPrice {
		cols["old_price"] = nullDecimal(p.OldPrice)
	}
	if patch.Category != nil {
		cols["category"] = p.Category
	}
	if patch.Subcategory != nil {
		cols["subcategory"] = p.Subcategory
	}
	if patch.Images != nil {
		cols["images"] = jsonColumn(p.Images)
	}
	if patch.InStock != nil {
		cols["in_stock"] = p.InStock
	}
	if patch.Featured != nil {
		cols["featured"] = p.Featured
	}
	if patch.Condition != nil {
		cols["condition"] = p.Condition
	}
	if patch.Tags != nil {
		cols["tags"] = jsonColumn(p.Tags)
	}
	return cols
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

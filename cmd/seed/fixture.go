package main

import (
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// fixture is the YAML seed file layout
type fixture struct {
	Products []fixtureProduct `yaml:"products"`
}

type fixtureProduct struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Price       string   `yaml:"price"`
	OldPrice    string   `yaml:"old_price,omitempty"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	Images      []string `yaml:"images,omitempty"`
	InStock     *bool    `yaml:"in_stock,omitempty"`
	Featured    bool     `yaml:"featured,omitempty"`
	Condition   string   `yaml:"condition,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// toPatch converts a fixture entry. Prices are strings so YAML floats never round them.
func (p fixtureProduct) toPatch() (catalog.ProductPatch, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return catalog.ProductPatch{}, fmt.Errorf("product %q: invalid price %q", p.Title, p.Price)
	}

	inStock := true
	if p.InStock != nil {
		inStock = *p.InStock
	}
	category := catalog.Category(p.Category)
	condition := catalog.Condition(p.Condition)
	if condition == "" {
		condition = catalog.ConditionNew
	}

	patch := catalog.ProductPatch{
		Title:       &p.Title,
		Description: &p.Description,
		Price:       &price,
		Category:    &category,
		Subcategory: &p.Subcategory,
		Images:      p.Images,
		InStock:     &inStock,
		Featured:    &p.Featured,
		Condition:   &condition,
		Tags:        p.Tags,
	}
	if p.OldPrice != "" {
		old, err := decimal.NewFromString(p.OldPrice)
		if err != nil {
			return catalog.ProductPatch{}, fmt.Errorf("product %q: invalid old_price %q", p.Title, p.OldPrice)
		}
		patch.OldPrice = &old
	}
	return patch, nil
}

// fakeProducts builds n random products spread over the whole taxonomy
func fakeProducts(f *gofakeit.Faker, n int) []catalog.ProductPatch {
	patches := make([]catalog.ProductPatch, 0, n)
	for range n {
		category := catalog.Categories[f.IntRange(0, len(catalog.Categories)-1)]
		subs := catalog.Subcategories(category)
		subcategory := subs[f.IntRange(0, len(subs)-1)]

		condition := catalog.ConditionNew
		if category == catalog.CategoryPersonal {
			condition = catalog.Conditions[f.IntRange(0, len(catalog.Conditions)-1)]
		}

		title := f.ProductName()
		description := f.ProductDescription()
		price := decimal.NewFromInt(int64(f.IntRange(100, 20000)))
		inStock := f.Float64() < 0.85
		featured := f.Float64() < 0.2

		patch := catalog.ProductPatch{
			Title:       &title,
			Description: &description,
			Price:       &price,
			Category:    &category,
			Subcategory: &subcategory,
			Images:      []string{fmt.Sprintf("https://picsum.photos/seed/%s/600/600", f.UUID())},
			InStock:     &inStock,
			Featured:    &featured,
			Condition:   &condition,
		}
		if f.Float64() < 0.3 {
			markup := decimal.NewFromInt(int64(100 + f.IntRange(10, 40))).Div(decimal.NewFromInt(100))
			old := price.Mul(markup).Round(0)
			patch.OldPrice = &old
		}
		for range f.IntRange(0, 3) {
			patch.Tags = append(patch.Tags, f.ProductFeature())
		}
		patches = append(patches, patch)
	}
	return patches
}

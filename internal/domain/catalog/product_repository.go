package catalog

import (
	"context"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductCriteria narrows a product query. Zero values are ignored.
type ProductCriteria struct {
	ID       *uuid.UUID
	Category Category
	Featured *bool
	InStock  *bool
	// Query matches title or description, case-insensitive substring
	Query string
}

// IsEmpty reports whether no criterion is set
func (c ProductCriteria) IsEmpty() bool {
	return c.ID == nil && c.Category == "" && c.Featured == nil && c.InStock == nil && c.Query == ""
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List returns up to limit products in the given order
	List(ctx context.Context, order shared.OrderSpec, limit int) ([]Product, error)

	// Filter returns up to limit products matching the criteria
	Filter(ctx context.Context, criteria ProductCriteria, order shared.OrderSpec, limit int) ([]Product, error)

	// Count returns the total number of products
	Count(ctx context.Context) (int64, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// Update writes only the fields present in the patch and returns the stored product.
	// Returns shared.ErrNotFound when the product does not exist.
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*Product, error)

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error
}

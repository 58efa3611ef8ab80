package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns up to limit products in the given order
func (r *GormProductRepository) List(ctx context.Context, order shared.OrderSpec, limit int) ([]catalog.Product, error) {
	return r.Filter(ctx, catalog.ProductCriteria{}, order, limit)
}

// Filter returns up to limit products matching the criteria
func (r *GormProductRepository) Filter(ctx context.Context, criteria catalog.ProductCriteria, order shared.OrderSpec, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyCriteria(r.db.WithContext(ctx).Model(&models.ProductModel{}), criteria).
		Order(ProductSortColumns.OrderClause(order)).
		Limit(shared.NormalizeLimit(limit))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// Count returns the total number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update merges the patch into the stored product, writing only the patched columns
func (r *GormProductRepository) Update(ctx context.Context, id uuid.UUID, patch catalog.ProductPatch) (*catalog.Product, error) {
	var updated *catalog.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ProductModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		product := model.ToDomain()
		if err := product.Apply(patch); err != nil {
			return err
		}

		if err := tx.Model(&models.ProductModel{}).
			Where("id = ?", id).
			Updates(models.ProductPatchColumns(product, patch.Normalized())).Error; err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deletes a product by its ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) applyCriteria(query *gorm.DB, criteria catalog.ProductCriteria) *gorm.DB {
	if criteria.ID != nil {
		query = query.Where("id = ?", *criteria.ID)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Featured != nil {
		query = query.Where("featured = ?", *criteria.Featured)
	}
	if criteria.InStock != nil {
		query = query.Where("in_stock = ?", *criteria.InStock)
	}
	if q := strings.TrimSpace(criteria.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

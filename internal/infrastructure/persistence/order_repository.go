package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns up to limit orders in the given order
func (r *GormOrderRepository) List(ctx context.Context, order shared.OrderSpec, limit int) ([]trade.Order, error) {
	return r.Filter(ctx, trade.OrderCriteria{}, order, limit)
}

// Filter returns up to limit orders matching the criteria
func (r *GormOrderRepository) Filter(ctx context.Context, criteria trade.OrderCriteria, order shared.OrderSpec, limit int) ([]trade.Order, error) {
	var rows []models.OrderModel
	query := r.applyCriteria(r.db.WithContext(ctx).Model(&models.OrderModel{}), criteria).
		Order(OrderSortColumns.OrderClause(order)).
		Limit(shared.NormalizeLimit(limit))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// Count returns the number of orders matching the criteria
func (r *GormOrderRepository) Count(ctx context.Context, criteria trade.OrderCriteria) (int64, error) {
	var count int64
	query := r.applyCriteria(r.db.WithContext(ctx).Model(&models.OrderModel{}), criteria)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumTotal returns the sum of order totals matching the criteria
func (r *GormOrderRepository) SumTotal(ctx context.Context, criteria trade.OrderCriteria) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	query := r.applyCriteria(r.db.WithContext(ctx).Model(&models.OrderModel{}), criteria).
		Select("SUM(total)")
	if err := query.Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update merges the patch into the stored order, writing only the patched columns
func (r *GormOrderRepository) Update(ctx context.Context, id uuid.UUID, patch trade.OrderPatch) (*trade.Order, error) {
	var updated *trade.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.OrderModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		order := model.ToDomain()
		if err := order.Apply(patch); err != nil {
			return err
		}

		if err := tx.Model(&models.OrderModel{}).
			Where("id = ?", id).
			Updates(models.OrderPatchColumns(order, patch)).Error; err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deletes an order by its ID
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) applyCriteria(query *gorm.DB, criteria trade.OrderCriteria) *gorm.DB {
	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if q := strings.TrimSpace(criteria.Query); q != "" {
		query = query.Where("(LOWER(customer_name) LIKE ? OR customer_phone LIKE ?)",
			"%"+strings.ToLower(q)+"%", "%"+q+"%")
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)

package trade

import (
	"context"
	"strings"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusFilterAll disables status filtering in list queries
const StatusFilterAll = "all"

// OrderCriteria narrows an order query. Zero values are ignored.
type OrderCriteria struct {
	Status OrderStatus
	// Query matches customer name case-insensitively or a substring of the phone
	Query string
}

// ParseStatusFilter converts a status filter value into criteria status.
// "all" and "" disable filtering.
func ParseStatusFilter(raw string) (OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == StatusFilterAll {
		return "", nil
	}
	status := OrderStatus(raw)
	if !status.IsValid() {
		return "", ErrInvalidStatus(status)
	}
	return status, nil
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// List returns up to limit orders in the given order
	List(ctx context.Context, order shared.OrderSpec, limit int) ([]Order, error)

	// Filter returns up to limit orders matching the criteria
	Filter(ctx context.Context, criteria OrderCriteria, order shared.OrderSpec, limit int) ([]Order, error)

	// Count returns the number of orders matching the criteria
	Count(ctx context.Context, criteria OrderCriteria) (int64, error)

	// SumTotal returns the sum of Total over orders matching the criteria
	SumTotal(ctx context.Context, criteria OrderCriteria) (decimal.Decimal, error)

	// Create inserts a new order
	Create(ctx context.Context, order *Order) error

	// Update writes only the fields present in the patch and returns the stored order.
	// Returns shared.ErrNotFound when the order does not exist.
	Update(ctx context.Context, id uuid.UUID, patch OrderPatch) (*Order, error)

	// Delete removes an order
	Delete(ctx context.Context, id uuid.UUID) error
}

// Package trade implements order use cases for the admin panel and checkout.
package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/domain/trade"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderCache caches order lists for the freshness window
type OrderCache interface {
	Get(ctx context.Context, key string) (items []trade.Order, gen int64, ok bool, err error)
	Set(ctx context.Context, key string, gen int64, items []trade.Order) error
	Invalidate(ctx context.Context) error
}

// OrderService handles order-related business operations
type OrderService struct {
	orderRepo trade.OrderRepository
	cache     OrderCache
	logger    *zap.Logger
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithOrderLogger sets the logger
func WithOrderLogger(logger *zap.Logger) OrderServiceOption {
	return func(s *OrderService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo trade.OrderRepository, cache OrderCache, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		orderRepo: orderRepo,
		cache:     cache,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns orders matching the filter. Results are cached per filter
// until the next order write.
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, error) {
	status, err := trade.ParseStatusFilter(filter.Status)
	if err != nil {
		return nil, err
	}
	criteria := trade.OrderCriteria{Status: status, Query: strings.TrimSpace(filter.Search)}
	order := shared.ParseOrderSpec(filter.OrderBy)
	limit := shared.NormalizeLimit(filter.Limit)

	key := fmt.Sprintf("list:%s:%s:%s:%d", order, criteria.Status, strings.ToLower(criteria.Query), limit)
	cached, gen, ok, cacheErr := s.cache.Get(ctx, key)
	if cacheErr != nil {
		s.logger.Warn("Order cache read failed", zap.Error(cacheErr))
	} else if ok {
		return ToOrderResponses(cached), nil
	}

	orders, err := s.orderRepo.Filter(ctx, criteria, order, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if cacheErr == nil {
		if err := s.cache.Set(ctx, key, gen, orders); err != nil {
			s.logger.Warn("Order cache write failed", zap.Error(err))
		}
	}
	return ToOrderResponses(orders), nil
}

// GetByID returns a single order
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Place stores a new order built from a patch. Used by checkout.
func (s *OrderService) Place(ctx context.Context, patch trade.OrderPatch) (*trade.Order, error) {
	order, err := trade.NewOrder(patch)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.invalidate(ctx)

	logger.For(ctx, s.logger).Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// Update applies a partial update
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	patch := req.ToPatch()
	if patch.IsEmpty() {
		return s.GetByID(ctx, id)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// SetStatus moves an order to any valid status
func (s *OrderService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*OrderResponse, error) {
	st := trade.OrderStatus(status)
	if !st.IsValid() {
		return nil, trade.ErrInvalidStatus(st)
	}
	order, err := s.orderRepo.Update(ctx, id, trade.OrderPatch{Status: &st})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logger.For(ctx, s.logger).Info("Order status changed", zap.String("order_id", id.String()), zap.String("status", status))
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete removes an order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.For(ctx, s.logger).Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}

// OrderStats summarizes orders for the dashboard
type OrderStats struct {
	TotalOrders   int64
	PendingOrders int64
	TotalRevenue  decimal.Decimal
}

// Stats counts all and pending orders and sums the totals of delivered ones
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	total, err := s.orderRepo.Count(ctx, trade.OrderCriteria{})
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	pending, err := s.orderRepo.Count(ctx, trade.OrderCriteria{Status: trade.OrderStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	revenue, err := s.orderRepo.SumTotal(ctx, trade.OrderCriteria{Status: trade.OrderStatusDelivered})
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return &OrderStats{TotalOrders: total, PendingOrders: pending, TotalRevenue: revenue}, nil
}

func (s *OrderService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Order cache invalidation failed", zap.Error(err))
	}
}

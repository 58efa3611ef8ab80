// Package report builds the admin dashboard summary.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/greenshop/backend/internal/application/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductCounter counts catalog products
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

// OrderStatsProvider summarizes orders
type OrderStatsProvider interface {
	Stats(ctx context.Context) (*trade.OrderStats, error)
}

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	PendingOrders int64           `json:"pending_orders"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// DashboardService computes dashboard statistics
type DashboardService struct {
	products ProductCounter
	orders   OrderStatsProvider
	logger   *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(products ProductCounter, orders OrderStatsProvider, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{products: products, orders: orders, logger: logger}
}

// Stats returns product and order totals. Revenue counts delivered orders only.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	start := time.Now()

	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	orders, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Dashboard stats computed",
		zap.Int64("products", products),
		zap.Int64("orders", orders.TotalOrders),
		zap.Duration("duration", time.Since(start)))

	return &DashboardStats{
		TotalProducts: products,
		TotalOrders:   orders.TotalOrders,
		TotalRevenue:  orders.TotalRevenue,
		PendingOrders: orders.PendingOrders,
		GeneratedAt:   start.UTC(),
	}, nil
}

// Gauges returns the counters sampled by the periodic business metrics collector
func (s *DashboardService) Gauges(ctx context.Context) (products, orders, pending int64, err error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return stats.TotalProducts, stats.TotalOrders, stats.PendingOrders, nil
}

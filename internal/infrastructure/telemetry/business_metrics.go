package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var ErrMeterNil = errors.New("telemetry: business metrics need a meter")

// ShopStatsProvider supplies the catalog and order gauges
type ShopStatsProvider interface {
	Gauges(ctx context.Context) (products, orders, pending int64, err error)
}

type BusinessMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StatsProvider ShopStatsProvider
	// how long a stats snapshot is reused across collections, 1m when zero
	StatsTTL time.Duration
}

// CartAction labels a cart or favorites mutation
type CartAction string

const (
	CartActionAdd            CartAction = "add"
	CartActionUpdate         CartAction = "update"
	CartActionRemove         CartAction = "remove"
	CartActionClear          CartAction = "clear"
	CartActionToggleFavorite CartAction = "toggle_favorite"
)

// shopSnapshot is the last successful ShopStatsProvider answer
type shopSnapshot struct {
	products, orders, pending int64
	at                        time.Time
}

// BusinessMetrics counts checkouts and cart activity. Catalog and order
// gauges are read from the stats provider when a reader collects.
type BusinessMetrics struct {
	placed   *Counter
	amount   *Counter
	lines    *Counter
	failures *Counter
	actions  *Counter

	stats ShopStatsProvider
	ttl   time.Duration
	log   *zap.Logger

	mu   sync.Mutex
	last *shopSnapshot

	reg      metric.Registration
	stopOnce sync.Once
}

func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{
		stats: cfg.StatsProvider,
		ttl:   time.Minute,
		log:   cfg.Logger,
	}
	if cfg.StatsTTL > 0 {
		bm.ttl = cfg.StatsTTL
	}
	if bm.log == nil {
		bm.log = zap.NewNop()
	}

	for _, c := range []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.placed, "shop_order_placed_total", "Orders placed through checkout", "{order}"},
		{&bm.amount, "shop_order_amount_total", "Placed order amount in cents", "{cent}"},
		{&bm.lines, "shop_order_lines_total", "Cart lines converted into order items", "{line}"},
		{&bm.failures, "shop_checkout_failure_total", "Rejected checkouts by reason", "{checkout}"},
		{&bm.actions, "shop_cart_action_total", "Cart and favorites mutations", "{action}"},
	} {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	if bm.stats == nil {
		return bm, nil
	}
	reg, err := bm.observeShop(cfg.Meter)
	if err != nil {
		return nil, err
	}
	bm.reg = reg
	return bm, nil
}

func (bm *BusinessMetrics) observeShop(meter metric.Meter) (metric.Registration, error) {
	var gauges [3]metric.Int64ObservableGauge
	for i, g := range []struct{ name, desc, unit string }{
		{"shop_catalog_products", "Products in the catalog", "{product}"},
		{"shop_orders", "Stored orders", "{order}"},
		{"shop_orders_pending", "Orders awaiting processing", "{order}"},
	} {
		gauge, err := meter.Int64ObservableGauge(g.name, metric.WithDescription(g.desc), metric.WithUnit(g.unit))
		if err != nil {
			return nil, instrumentErr("gauge", g.name, err)
		}
		gauges[i] = gauge
	}
	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		snap := bm.snapshot(ctx)
		if snap == nil {
			return nil
		}
		o.ObserveInt64(gauges[0], snap.products)
		o.ObserveInt64(gauges[1], snap.orders)
		o.ObserveInt64(gauges[2], snap.pending)
		return nil
	}, gauges[0], gauges[1], gauges[2])
}

// snapshot returns cached stats while they are fresher than ttl. A failed
// refresh keeps serving the previous snapshot.
func (bm *BusinessMetrics) snapshot(ctx context.Context) *shopSnapshot {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	now := time.Now()
	if bm.last != nil && now.Sub(bm.last.at) < bm.ttl {
		return bm.last
	}
	products, orders, pending, err := bm.stats.Gauges(ctx)
	if err != nil {
		bm.log.Warn("shop stats unavailable", zap.Error(err))
		return bm.last
	}
	bm.last = &shopSnapshot{products: products, orders: orders, pending: pending, at: now}
	return bm.last
}

// RecordOrderPlaced counts a successful checkout; total is added in cents
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, lines int) {
	bm.placed.Inc(ctx, AttrOutcome.String("placed"))
	bm.amount.Add(ctx, total.Shift(2).IntPart())
	bm.lines.Add(ctx, int64(lines))
}

// RecordCheckoutFailure counts a rejected checkout under a lower-case error code
func (bm *BusinessMetrics) RecordCheckoutFailure(ctx context.Context, reason string) {
	bm.failures.Inc(ctx, AttrOutcome.String(reason))
}

func (bm *BusinessMetrics) RecordCartAction(ctx context.Context, action CartAction) {
	bm.actions.Inc(ctx, AttrCartAction.String(string(action)))
}

// Stop detaches the shop gauges. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		if bm.reg == nil {
			return
		}
		if err := bm.reg.Unregister(); err != nil {
			bm.log.Warn("unregister shop gauges", zap.Error(err))
		}
	})
}

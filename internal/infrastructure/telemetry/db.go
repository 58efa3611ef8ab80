package telemetry

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// timedCallbacks registers hooks around every gorm statement kind and calls
// after with the statement, its SQL verb and how long it ran. The after hook
// runs before otelgorm ends its span.
func timedCallbacks(db *gorm.DB, name string, after func(tx *gorm.DB, op string, elapsed time.Duration)) error {
	key := name + ":started"
	start := func(tx *gorm.DB) { tx.InstanceSet(key, time.Now()) }
	finish := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			var elapsed time.Duration
			if v, ok := tx.InstanceGet(key); ok {
				if t, ok := v.(time.Time); ok {
					elapsed = time.Since(t)
				}
			}
			after(tx, op, elapsed)
		}
	}

	cb := db.Callback()
	hooks := []struct {
		stage    string
		before   callbackRegistrar
		afterReg callbackRegistrar
		op       string
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create").Before("otel:after:create"), "INSERT"},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query").Before("otel:after:select"), "SELECT"},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update").Before("otel:after:update"), "UPDATE"},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete").Before("otel:after:delete"), "DELETE"},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row").Before("otel:after:row"), "SELECT"},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw").Before("otel:after:raw"), "RAW"},
	}
	var errs []error
	for _, h := range hooks {
		errs = append(errs,
			h.before.Register(name+":before_"+h.stage, start),
			h.afterReg.Register(name+":after_"+h.stage, finish(h.op)),
		)
	}
	return errors.Join(errs...)
}

// DBTracingConfig configures database spans
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bind variables in db.statement; development only
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingPlugin adds otelgorm spans and annotates them with row counts,
// table names and slow-query events.
type DBTracingPlugin struct {
	config DBTracingConfig
	log    *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, log *zap.Logger) *DBTracingPlugin {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, log: log}
}

// RegisterOtelGorm installs the plugin on db
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := timedCallbacks(db, "shop_trace", p.annotate); err != nil {
		return err
	}

	p.log.Info("Database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) annotate(tx *gorm.DB, _ string, elapsed time.Duration) {
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}

type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{Enabled: true, SlowQueryThreshold: 200 * time.Millisecond}
}

// DBMetrics counts statements and their latency from gorm callbacks. Pool
// usage is observed from sql.DB stats whenever the reader collects.
type DBMetrics struct {
	queries  *Counter
	slow     *Counter
	duration *Histogram
	slowAt   time.Duration
	pool     metric.Registration
	log      *zap.Logger
}

// RegisterDBMetrics instruments db. Without an enabled meter provider it
// returns nil metrics and no error.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, log *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || mp == nil || !mp.IsEnabled() {
		return nil, nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	meter := mp.Meter("greenshop/db")
	m := &DBMetrics{slowAt: cfg.SlowQueryThreshold, log: log}
	if m.slowAt <= 0 {
		m.slowAt = DefaultDBMetricsConfig().SlowQueryThreshold
	}

	if m.queries, err = NewCounter(meter, "db_query_total", "Database statements by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slow, err = NewCounter(meter, "db_slow_query_total", "Statements slower than the slow-query threshold", "{query}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.pool, err = observePool(meter, pool); err != nil {
		return nil, err
	}
	if err := timedCallbacks(db, "shop_metrics", func(tx *gorm.DB, op string, elapsed time.Duration) {
		m.RecordQuery(tx.Statement.Context, op, tx.Statement.Table, elapsed)
	}); err != nil {
		return nil, err
	}
	log.Info("database metrics registered", zap.Duration("slow_query_threshold", m.slowAt))
	return m, nil
}

func observePool(meter metric.Meter, pool *sql.DB) (metric.Registration, error) {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pool connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, instrumentErr("gauge", "db_pool_connections", err)
	}
	limit, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Pool connection limit"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, instrumentErr("gauge", "db_pool_connections_max", err)
	}
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := pool.Stats()
		o.ObserveInt64(limit, int64(st.MaxOpenConnections))
		o.ObserveInt64(conns, int64(st.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(conns, int64(st.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(conns, int64(st.OpenConnections), metric.WithAttributes(AttrDBPoolState.String("open")))
		return nil
	}, conns, limit)
}

// RecordQuery counts one statement of kind op against table
func (m *DBMetrics) RecordQuery(ctx context.Context, op, table string, elapsed time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	kind := AttrDBOperation.String(op)
	m.queries.Inc(ctx, kind)
	m.duration.RecordDuration(ctx, elapsed, kind)
	if elapsed > m.slowAt {
		m.slow.Inc(ctx, kind, AttrDBTable.String(cmp.Or(table, "unknown")))
	}
}

// Stop detaches the pool observer
func (m *DBMetrics) Stop() {
	if err := m.pool.Unregister(); err != nil {
		m.log.Warn("unregister pool observer", zap.Error(err))
	}
}

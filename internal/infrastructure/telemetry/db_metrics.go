package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	defaultPoolStatsInterval  = 15 * time.Second
)

// DBMetricsConfig controls query and connection pool metric collection.
type DBMetricsConfig struct {
	Enabled bool
	// SlowQueryThreshold feeds db_slow_query_total. Queries at or under it
	// only count toward the duration histogram.
	SlowQueryThreshold time.Duration
	// PoolStatsInterval is how often pool gauges are sampled.
	PoolStatsInterval time.Duration
}

// DefaultDBMetricsConfig enables collection with a 200ms slow query
// threshold and 15s pool sampling.
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: defaultSlowQueryThreshold,
		PoolStatsInterval:  defaultPoolStatsInterval,
	}
}

// DBMetrics owns the database instruments and the pool stats sampler.
//
// Instruments:
//
//	db_pool_connections        gauge, labeled by state (idle, in_use, open)
//	db_pool_connections_max    gauge
//	db_query_total             counter, labeled by operation
//	db_query_duration_seconds  histogram, labeled by operation
//	db_slow_query_total        counter, labeled by table
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	queryTotal         *Counter
	queryDuration      *Histogram
	slowQueryTotal     *Counter

	cfg DBMetricsConfig
	log *zap.Logger

	mu    sync.RWMutex
	sqlDB *sql.DB

	stopSampler func()
	samplerDone sync.WaitGroup
	stopOnce    sync.Once
}

// NewDBMetrics builds the instrument set on meter. Zero-valued config
// fields fall back to the defaults.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, log *zap.Logger) (*DBMetrics, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = defaultSlowQueryThreshold
	}
	if cfg.PoolStatsInterval == 0 {
		cfg.PoolStatsInterval = defaultPoolStatsInterval
	}

	m := &DBMetrics{cfg: cfg, log: log, stopSampler: func() {}}

	var err error
	if m.poolConnections, err = NewGauge(meter,
		"db_pool_connections",
		"Number of connections in the pool by state",
		"{connection}"); err != nil {
		return nil, fmt.Errorf("create db_pool_connections: %w", err)
	}
	if m.poolConnectionsMax, err = NewGauge(meter,
		"db_pool_connections_max",
		"Maximum number of connections in the pool",
		"{connection}"); err != nil {
		return nil, fmt.Errorf("create db_pool_connections_max: %w", err)
	}
	if m.queryTotal, err = NewCounter(meter,
		"db_query_total",
		"Total number of database queries by operation type",
		"{query}"); err != nil {
		return nil, fmt.Errorf("create db_query_total: %w", err)
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, fmt.Errorf("create db_query_duration_seconds: %w", err)
	}
	if m.slowQueryTotal, err = NewCounter(meter,
		"db_slow_query_total",
		"Total number of database queries over the slow query threshold",
		"{query}"); err != nil {
		return nil, fmt.Errorf("create db_slow_query_total: %w", err)
	}

	return m, nil
}

// SetSQLDB attaches the pool to sample. Must be called before
// StartPoolStatsCollection.
func (m *DBMetrics) SetSQLDB(sqlDB *sql.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sqlDB = sqlDB
}

func (m *DBMetrics) pool() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sqlDB
}

// StartPoolStatsCollection launches the background sampler. It records one
// sample immediately, then on every PoolStatsInterval tick until Stop or
// ctx cancellation.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	if m.pool() == nil {
		m.log.Warn("Pool stats collection skipped, no sql.DB attached")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.stopSampler = cancel

	m.samplerDone.Add(1)
	go m.runSampler(ctx)

	m.log.Info("Started database connection pool stats collection",
		zap.Duration("interval", m.cfg.PoolStatsInterval),
	)
}

func (m *DBMetrics) runSampler(ctx context.Context) {
	defer m.samplerDone.Done()

	ticker := time.NewTicker(m.cfg.PoolStatsInterval)
	defer ticker.Stop()

	m.collectPoolStats(ctx)
	for {
		select {
		case <-ticker.C:
			m.collectPoolStats(ctx)
		case <-ctx.Done():
			m.log.Debug("Stopping pool stats collection")
			return
		}
	}
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	sqlDB := m.pool()
	if sqlDB == nil {
		return
	}

	stats := sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))

	// OpenConnections is Idle + InUse. WaitCount is cumulative rather than
	// a current state, so it is not exported as a gauge.
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop terminates the sampler and waits for it to exit. Safe to call more
// than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		m.stopSampler()
		m.samplerDone.Wait()
		m.log.Debug("Database metrics stopped")
	})
}

// RecordQuery records one completed statement. The operation is normalized
// to uppercase and empty operations count as UNKNOWN.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}

	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.cfg.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// DBMetricsPlugin feeds DBMetrics from GORM callbacks.
type DBMetricsPlugin struct {
	metrics *DBMetrics
	log     *zap.Logger
}

func NewDBMetricsPlugin(metrics *DBMetrics, log *zap.Logger) *DBMetricsPlugin {
	if log == nil {
		log = zap.NewNop()
	}
	return &DBMetricsPlugin{metrics: metrics, log: log}
}

// Name implements gorm.Plugin.
func (p *DBMetricsPlugin) Name() string {
	return "db_metrics"
}

// Initialize implements gorm.Plugin. It registers timing callbacks around
// every operation kind.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	markStart := func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, dbMetricsStartTimeKey, time.Now())
	}
	// Row and Raw statements carry arbitrary SQL, so the operation label
	// is sniffed from the statement text instead of the callback kind.
	sniffed := func(db *gorm.DB) {
		p.recordMetrics(db, detectOperationType(db.Statement.SQL.String()))
	}

	cb := db.Callback()
	hooks := []struct {
		name   string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
		record func(*gorm.DB)
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register,
			func(db *gorm.DB) { p.recordMetrics(db, "INSERT") }},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register,
			func(db *gorm.DB) { p.recordMetrics(db, "SELECT") }},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register,
			func(db *gorm.DB) { p.recordMetrics(db, "UPDATE") }},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register,
			func(db *gorm.DB) { p.recordMetrics(db, "DELETE") }},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, sniffed},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, sniffed},
	}
	for _, h := range hooks {
		if err := h.before("db_metrics:before_"+h.name, markStart); err != nil {
			return fmt.Errorf("register before %s callback: %w", h.name, err)
		}
		if err := h.after("db_metrics:after_"+h.name, h.record); err != nil {
			return fmt.Errorf("register after %s callback: %w", h.name, err)
		}
	}

	p.log.Info("Database metrics plugin initialized")
	return nil
}

func (p *DBMetricsPlugin) recordMetrics(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var duration time.Duration
	if startTime, ok := ctx.Value(dbMetricsStartTimeKey).(time.Time); ok {
		duration = time.Since(startTime)
	}

	p.metrics.RecordQuery(ctx, operation, db.Statement.Table, duration, db.Error)
}

// detectOperationType classifies raw SQL by its leading keyword.
func detectOperationType(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	switch {
	case strings.HasPrefix(sql, "SELECT"):
		return "SELECT"
	case strings.HasPrefix(sql, "INSERT"):
		return "INSERT"
	case strings.HasPrefix(sql, "UPDATE"):
		return "UPDATE"
	case strings.HasPrefix(sql, "DELETE"):
		return "DELETE"
	default:
		return "OTHER"
	}
}

type dbMetricsContextKey string

const dbMetricsStartTimeKey dbMetricsContextKey = "db_metrics_start_time"

// RegisterDBMetrics wires query metrics and pool sampling onto db. It
// returns nil metrics without error when collection is disabled or no meter
// provider is available. Callers own the returned metrics and must Stop
// them on shutdown.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, log *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled {
		log.Debug("Database metrics disabled")
		return nil, nil
	}
	if meterProvider == nil || !meterProvider.IsEnabled() {
		log.Debug("MeterProvider not available, skipping database metrics")
		return nil, nil
	}

	metrics, err := NewDBMetrics(meterProvider.Meter("db.client"), cfg, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve sql.DB for pool stats: %w", err)
	}
	metrics.SetSQLDB(sqlDB)

	if err := db.Use(NewDBMetricsPlugin(metrics, log)); err != nil {
		return nil, fmt.Errorf("register db_metrics plugin: %w", err)
	}

	log.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", cfg.PoolStatsInterval),
	)
	return metrics, nil
}

package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newManualMeter returns a manual reader plus a DBMetrics instance built on
// a meter scoped to the given name.
func newManualMeter(t *testing.T, scope string) (*sdkmetric.ManualReader, *DBMetrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewDBMetrics(provider.Meter(scope), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)
	return reader, metrics
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func newMockGorm(t *testing.T) *gorm.DB {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	meter := provider.Meter("test")

	t.Run("creates all instruments", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, metrics.poolConnections)
		assert.NotNil(t, metrics.poolConnectionsMax)
		assert.NotNil(t, metrics.queryTotal)
		assert.NotNil(t, metrics.queryDuration)
		assert.NotNil(t, metrics.slowQueryTotal)
	})

	t.Run("zero config gets defaults", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{}, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, 200*time.Millisecond, metrics.cfg.SlowQueryThreshold)
		assert.Equal(t, 15*time.Second, metrics.cfg.PoolStatsInterval)
	})

	t.Run("nil logger replaced with nop", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), nil)
		require.NoError(t, err)
		require.NotNil(t, metrics.log)
	})
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("counts and times every query", func(t *testing.T) {
		reader, metrics := newManualMeter(t, "record")

		metrics.RecordQuery(ctx, "SELECT", "files", 50*time.Millisecond, nil)

		rm := collect(t, reader)
		assert.True(t, findMetric(rm, "db_query_total"))
		assert.True(t, findMetric(rm, "db_query_duration_seconds"))
	})

	t.Run("slow query over threshold is counted", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(ctx) })

		metrics, err := NewDBMetrics(provider.Meter("slow"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "subjects", 250*time.Millisecond, nil)

		assert.True(t, findMetric(collect(t, reader), "db_slow_query_total"))
	})

	t.Run("fast query stays out of the slow counter", func(t *testing.T) {
		reader, metrics := newManualMeter(t, "fast")

		metrics.RecordQuery(ctx, "SELECT", "branches", 50*time.Millisecond, nil)

		rm := collect(t, reader)
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "db_slow_query_total" {
					continue
				}
				sum := m.Data.(metricdata.Sum[int64])
				for _, dp := range sum.DataPoints {
					assert.Equal(t, int64(0), dp.Value)
				}
			}
		}
	})

	t.Run("operation case and empty operation", func(t *testing.T) {
		reader, metrics := newManualMeter(t, "normalize")

		metrics.RecordQuery(ctx, "select", "files", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "Insert", "bookmarks", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "", "collections", 10*time.Millisecond, nil)

		assert.True(t, findMetric(collect(t, reader), "db_query_total"))
	})

	t.Run("slow query with empty table labeled unknown", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(ctx) })

		metrics, err := NewDBMetrics(provider.Meter("noTable"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "", 100*time.Millisecond, nil)

		assert.True(t, findMetric(collect(t, reader), "db_slow_query_total"))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	t.Run("samples the pool on a short interval", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = mockDB.Close() })

		metrics, err := NewDBMetrics(provider.Meter("pool"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		rm := collect(t, reader)
		assert.True(t, findMetric(rm, "db_pool_connections_max"))
		assert.True(t, findMetric(rm, "db_pool_connections"))
	})

	t.Run("no sql.DB attached is a logged no-op", func(t *testing.T) {
		_, metrics := newManualMeter(t, "noDB")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		metrics.StartPoolStatsCollection(ctx)
		metrics.Stop()
	})

	t.Run("context cancellation stops the sampler", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = mockDB.Close() })

		metrics, err := NewDBMetrics(provider.Meter("cancel"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: time.Second,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		metrics.StartPoolStatsCollection(ctx)
		cancel()
		metrics.Stop()
	})
}

func TestDBMetrics_Stop(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	metrics, err := NewDBMetrics(provider.Meter("stop"), DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	metrics.StartPoolStatsCollection(ctx)

	t.Run("returns promptly", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			metrics.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop blocked")
		}
	})

	t.Run("repeat calls do not panic", func(t *testing.T) {
		assert.NotPanics(t, metrics.Stop)
		assert.NotPanics(t, metrics.Stop)
	})
}

func TestDBMetricsPlugin(t *testing.T) {
	_, metrics := newManualMeter(t, "plugin")
	plugin := NewDBMetricsPlugin(metrics, zap.NewNop())

	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "db_metrics", plugin.Name())
	})

	t.Run("initialize registers callbacks", func(t *testing.T) {
		require.NoError(t, plugin.Initialize(newMockGorm(t)))
	})
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM files WHERE subject_id = 1", "SELECT"},
		{"select slug from branches", "SELECT"},
		{"  SELECT id FROM subjects", "SELECT"},
		{"INSERT INTO bookmarks (user_id, file_id) VALUES (1, 2)", "INSERT"},
		{"insert into collections values (1)", "INSERT"},
		{"UPDATE files SET like_count = like_count + 1", "UPDATE"},
		{"DELETE FROM bookmarks WHERE id = 1", "DELETE"},
		{"delete from collection_files", "DELETE"},
		{"CREATE TABLE files", "OTHER"},
		{"TRUNCATE TABLE sessions", "OTHER"},
		{"", "OTHER"},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.want, detectOperationType(tc.sql))
		})
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	logger := zap.NewNop()

	t.Run("disabled returns nil metrics", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(newMockGorm(t), nil, DBMetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("nil meter provider returns nil metrics", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(newMockGorm(t), nil, DBMetricsConfig{Enabled: true}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("enabled wires plugin and pool stats", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		sdkProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = sdkProvider.Shutdown(context.Background()) })

		mp := &MeterProvider{
			provider: sdkProvider,
			logger:   logger,
			config:   MetricsConfig{Enabled: true},
		}

		metrics, err := RegisterDBMetrics(newMockGorm(t), mp, DefaultDBMetricsConfig(), logger)
		require.NoError(t, err)
		require.NotNil(t, metrics)
	})
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	reader, metrics := newManualMeter(t, "concurrent")

	operations := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	tables := []string{"users", "files", "subjects", "bookmarks"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			metrics.RecordQuery(ctx, operations[i%4], tables[i%4], time.Duration(i)*time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	assert.True(t, findMetric(collect(t, reader), "db_query_total"))
}

func TestDBMetrics_MeterScope(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewDBMetrics(provider.Meter("studyhub.db"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	metrics.RecordQuery(context.Background(), "SELECT", "files", 10*time.Millisecond, nil)

	rm := collect(t, reader)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name == "studyhub.db" {
			assert.NotEmpty(t, sm.Metrics)
			return
		}
	}
	t.Error("metrics not registered under the expected meter scope")
}

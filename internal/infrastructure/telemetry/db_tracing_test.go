package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type studyFile struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:200"`
	Slug      string `gorm:"size:200"`
	CreatedAt time.Time
}

func newTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&studyFile{}))
	return db
}

func newSpanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "interpolated SQL must stay out of spans unless opted in")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_RegisterOtelGorm(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		db := newTracingTestDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("enabled registers plugin and callbacks", func(t *testing.T) {
		db := newTracingTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBSystem = "sqlite"

		plugin := NewDBTracingPlugin(cfg, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("full SQL mode", func(t *testing.T) {
		db := newTracingTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.LogFullSQL = true
		cfg.DBSystem = "sqlite"

		plugin := NewDBTracingPlugin(cfg, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("double registration fails", func(t *testing.T) {
		db := newTracingTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBSystem = "sqlite"

		plugin := NewDBTracingPlugin(cfg, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestDBTracingPlugin_Observe(t *testing.T) {
	newPlugin := func(threshold time.Duration) *DBTracingPlugin {
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.SlowQueryThresh = threshold
		return NewDBTracingPlugin(cfg, zap.NewNop())
	}

	t.Run("rows affected and table attributes", func(t *testing.T) {
		db := newTracingTestDB(t)
		tp, recorder := newSpanRecorder(t)
		plugin := newPlugin(200 * time.Millisecond)

		ctx, span := tp.Tracer("test").Start(context.Background(), "catalog.upload")
		files := []studyFile{
			{Title: "Sorting Notes", Slug: "sorting-notes"},
			{Title: "Graphs PYQ 2024", Slug: "graphs-pyq-2024"},
			{Title: "DBMS Unit 3", Slug: "dbms-unit-3"},
		}
		result := db.WithContext(ctx).Create(&files)
		require.NoError(t, result.Error)

		plugin.observe(result.Statement.DB)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)

		attrs := map[string]any{}
		for _, attr := range spans[0].Attributes() {
			attrs[string(attr.Key)] = attr.Value.AsInterface()
		}
		assert.Equal(t, int64(3), attrs["db.rows_affected"])
		assert.Equal(t, "study_files", attrs["db.sql.table"])
	})

	t.Run("record not found is not a span error", func(t *testing.T) {
		db := newTracingTestDB(t)
		tp, recorder := newSpanRecorder(t)
		plugin := newPlugin(200 * time.Millisecond)

		ctx, span := tp.Tracer("test").Start(context.Background(), "catalog.file_by_slug")
		var file studyFile
		tx := db.WithContext(ctx).First(&file, "slug = ?", "no-such-slug")
		require.ErrorIs(t, tx.Error, gorm.ErrRecordNotFound)

		plugin.observe(tx)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("slow query event", func(t *testing.T) {
		db := newTracingTestDB(t)
		tp, recorder := newSpanRecorder(t)
		plugin := newPlugin(1 * time.Nanosecond)

		ctx, span := tp.Tracer("test").Start(context.Background(), "catalog.branches")
		ctx = WithQueryStartTime(ctx)
		time.Sleep(time.Millisecond)

		scoped := db.WithContext(ctx)
		var file studyFile
		scoped.First(&file)

		plugin.observe(scoped.Statement.DB)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)

		var warned bool
		for _, event := range spans[0].Events() {
			if event.Name == "slow_query_warning" {
				warned = true
				for _, attr := range event.Attributes {
					if attr.Key == "duration_ms" {
						assert.Positive(t, attr.Value.AsInt64())
					}
				}
			}
		}
		assert.True(t, warned)
	})

	t.Run("non-recording span", func(t *testing.T) {
		db := newTracingTestDB(t)
		plugin := newPlugin(200 * time.Millisecond)

		scoped := db.WithContext(context.Background())
		plugin.observe(scoped)
	})

	t.Run("nil statement context", func(t *testing.T) {
		db := newTracingTestDB(t)
		plugin := newPlugin(200 * time.Millisecond)

		plugin.observe(db)
	})
}

func TestDBTracingPlugin_EndToEnd(t *testing.T) {
	db := newTracingTestDB(t)
	tp, recorder := newSpanRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "library.bookmark_file")
	scoped := db.WithContext(ctx)

	require.NoError(t, scoped.Create(&studyFile{Title: "OS Notes", Slug: "os-notes"}).Error)

	var found studyFile
	require.NoError(t, scoped.First(&found, "slug = ?", "os-notes").Error)
	assert.Equal(t, "OS Notes", found.Title)

	span.End()
	assert.NotEmpty(t, recorder.Ended())
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}

func BenchmarkDBTracingObserve(b *testing.B) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := db.AutoMigrate(&studyFile{}); err != nil {
		b.Fatal(err)
	}

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	scoped := db.WithContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plugin.observe(scoped)
	}
}

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// spanContextFor builds a context carrying a valid remote span context, the
// shape a request has after the propagator extracts incoming trace headers.
func spanContextFor(t *testing.T, traceID, spanID string) context.Context {
	t.Helper()

	tid, err := trace.TraceIDFromHex(traceID)
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex(spanID)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: tid,
		SpanID:  sid,
		Remote:  true,
	})
	require.True(t, sc.IsValid())
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestWithContext_RoundTrip(t *testing.T) {
	logger, logs := observedLogger()

	ctx := WithContext(context.Background(), logger)
	FromContext(ctx).Info("branch catalog loaded")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "branch catalog loaded", logs.All()[0].Message)
}

func TestFromContext_Fallbacks(t *testing.T) {
	t.Run("empty context returns nop", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.Info("ignored")
			logger.With(zap.String("subject", "algorithms")).Error("ignored")
		})
	})

	t.Run("wrong value type returns nop", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerKey, "not a logger")
		logger := FromContext(ctx)
		require.NotNil(t, logger)
		assert.NotPanics(t, func() { logger.Info("ignored") })
	})
}

func TestWithRequestID(t *testing.T) {
	base, logs := observedLogger()

	ctx, enriched := WithRequestID(context.Background(), base, "req-catalog-42")

	assert.Equal(t, "req-catalog-42", GetRequestID(ctx))

	t.Run("entries carry the request id", func(t *testing.T) {
		enriched.Info("file listed")
		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Context, zap.String("request_id", "req-catalog-42"))
	})

	t.Run("context holds the enriched logger", func(t *testing.T) {
		FromContext(ctx).Info("from context")
		last := logs.All()[logs.Len()-1]
		assert.Contains(t, last.Context, zap.String("request_id", "req-catalog-42"))
	})

	t.Run("later call overrides", func(t *testing.T) {
		ctx, _ := WithRequestID(ctx, base, "req-retry-43")
		assert.Equal(t, "req-retry-43", GetRequestID(ctx))
	})
}

func TestWithUserID(t *testing.T) {
	base, logs := observedLogger()

	ctx, enriched := WithUserID(context.Background(), base, "user-789")

	assert.Equal(t, "user-789", GetUserID(ctx))
	enriched.Info("bookmark created")
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Context, zap.String("user_id", "user-789"))
}

func TestContextChaining(t *testing.T) {
	base, logs := observedLogger()

	ctx, logger := WithRequestID(context.Background(), base, "req-1")
	ctx, logger = WithUserID(ctx, logger, "user-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))

	logger.Info("collection shared")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Contains(t, entry.Context, zap.String("request_id", "req-1"))
	assert.Contains(t, entry.Context, zap.String("user_id", "user-1"))
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetUserID_Missing(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}

func TestWithTraceContext(t *testing.T) {
	t.Run("valid span adds correlation fields", func(t *testing.T) {
		base, logs := observedLogger()
		ctx := spanContextFor(t,
			"4bf92f3577b34da6a3ce929d0e0e4736",
			"00f067aa0ba902b7",
		)

		WithTraceContext(ctx, base).Info("upload confirmed")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Contains(t, entry.Context, zap.String("trace_id", "4bf92f3577b34da6a3ce929d0e0e4736"))
		assert.Contains(t, entry.Context, zap.String("span_id", "00f067aa0ba902b7"))
	})

	t.Run("no span returns logger unchanged", func(t *testing.T) {
		base := zap.NewNop()
		assert.Equal(t, base, WithTraceContext(context.Background(), base))
	})

	t.Run("invalid span context returns logger unchanged", func(t *testing.T) {
		base := zap.NewNop()
		ctx := trace.ContextWithSpanContext(context.Background(), trace.SpanContext{})
		assert.Equal(t, base, WithTraceContext(ctx, base))
	})
}

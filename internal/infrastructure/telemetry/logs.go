package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig holds log export configuration.
type LogsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
}

// LoggerProvider wraps the SDK logger provider with lifecycle management.
// A disabled provider carries no SDK provider and every method degrades to
// a no-op.
type LoggerProvider struct {
	sdk *sdklog.LoggerProvider
	log *zap.Logger
	cfg LogsConfig
}

// NewLoggerProvider builds an OTLP gRPC log exporter and installs the
// resulting provider as the global one.
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, log *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{log: log, cfg: cfg}
	if !cfg.Enabled {
		log.Info("Log export disabled, using no-op logger provider")
		return lp, nil
	}

	exporter, err := newLogExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := serviceResource(cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.sdk)

	log.Info("OpenTelemetry log export initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	)
	return lp, nil
}

func newLogExporter(ctx context.Context, cfg LogsConfig) (sdklog.Exporter, error) {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP logs exporter: %w", err)
	}
	return exporter, nil
}

// Shutdown flushes pending records and tears the provider down. Bounded to
// 10 seconds regardless of the caller's context.
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := lp.sdk.Shutdown(ctx); err != nil {
		lp.log.Error("Error shutting down logger provider", zap.Error(err))
		return fmt.Errorf("shutdown logger provider: %w", err)
	}
	lp.log.Info("Logger provider shutdown complete")
	return nil
}

// IsEnabled reports whether log export is active.
func (lp *LoggerProvider) IsEnabled() bool {
	return lp.cfg.Enabled && lp.sdk != nil
}

// GetConfig returns a copy of the logs configuration.
func (lp *LoggerProvider) GetConfig() LogsConfig {
	return lp.cfg
}

// ForceFlush exports any buffered records immediately.
func (lp *LoggerProvider) ForceFlush(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	return lp.sdk.ForceFlush(ctx)
}

// GetLoggerProvider exposes the SDK provider, nil when disabled.
func (lp *LoggerProvider) GetLoggerProvider() *sdklog.LoggerProvider {
	return lp.sdk
}

// ZapBridgeConfig configures the Zap to OTEL bridge core.
type ZapBridgeConfig struct {
	ServiceName    string
	LoggerProvider *LoggerProvider
	// Level is the minimum level forwarded to the collector. The console
	// core keeps its own threshold.
	Level zapcore.Level
}

// NewZapOTELCore returns a zapcore.Core that forwards entries to the OTEL
// collector. Combine it with the console core via zapcore.NewTee, or use
// NewBridgedLogger which does exactly that. When export is disabled the
// returned core is a no-op.
func NewZapOTELCore(cfg ZapBridgeConfig) zapcore.Core {
	if cfg.LoggerProvider == nil || !cfg.LoggerProvider.IsEnabled() {
		return zapcore.NewNopCore()
	}

	core := otelzap.NewCore(cfg.ServiceName,
		otelzap.WithLoggerProvider(cfg.LoggerProvider.sdk))

	// otelzap has no min-level knob of its own.
	if cfg.Level != zapcore.DebugLevel {
		return &minLevelCore{Core: core, min: cfg.Level}
	}
	return core
}

// minLevelCore drops entries below min before they reach the wrapped core.
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}

// NewBridgedLogger tees the base core with the OTEL bridge core so every
// entry reaches both the local output and the collector.
func NewBridgedLogger(baseCore, otelCore zapcore.Core, opts ...zap.Option) *zap.Logger {
	return zap.New(zapcore.NewTee(baseCore, otelCore), opts...)
}

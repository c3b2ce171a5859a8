// Business-level span helpers for application services. HTTP and database
// spans come from otelgin and the gorm plugin; these helpers cover the
// service layer in between.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for business spans.
const TracerName = "studyhub-backend"

// Span attribute keys used across application services. Metric attributes
// live in metrics.go as attribute.Key values; these are plain strings for
// trace spans.
const (
	SpanAttrBranchSlug  = "branch_slug"
	SpanAttrSubjectSlug = "subject_slug"
	SpanAttrFileID      = "file_id"
	SpanAttrFileSlug    = "file_slug"

	SpanAttrQuery       = "query"
	SpanAttrResultCount = "result_count"

	SpanAttrStorageKey  = "storage_key"
	SpanAttrContentType = "content_type"
)

// SpanOption configures span start options.
type SpanOption func(*spanConfig)

type spanConfig struct {
	attrs []attribute.KeyValue
	kind  trace.SpanKind
}

// WithAttribute records an attribute on the span at start time.
func WithAttribute(key string, value any) SpanOption {
	return func(sc *spanConfig) {
		sc.attrs = append(sc.attrs, toAttribute(key, value))
	}
}

// WithSpanKind overrides the default internal span kind.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(sc *spanConfig) {
		sc.kind = kind
	}
}

// StartSpan opens a span on the global tracer provider. The caller owns the
// returned span and must End it.
func StartSpan(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, trace.Span) {
	sc := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&sc)
	}

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(sc.kind)}
	if len(sc.attrs) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(sc.attrs...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, spanName, startOpts...)
}

// StartServiceSpan opens a span named {service}.{method}, for example
// "file.search" or "file.confirm_upload".
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttribute records a single attribute on an existing span.
func SetAttribute(span trace.Span, key string, value any) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttribute(key, value))
}

// RecordError records the error and flips the span status to error.
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK explicitly marks the span successful. Spans without an error status
// already count as successful, so this is only for emphasis on key paths.
func SetOK(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// AddEvent records a timestamped annotation with alternating key/value
// attribute pairs. Non-string keys are skipped.
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the current trace ID, or "" outside a sampled trace.
// Handlers put it in error responses so users can quote it in bug reports.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the current span ID, or "" outside a trace.
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}
	return ""
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

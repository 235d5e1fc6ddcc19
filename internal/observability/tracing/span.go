package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type spanConfig struct {
	kind       trace.SpanKind
	attributes map[string]any
}

// SpanStartOption configures start behaviour for spans.
type SpanStartOption func(*spanConfig)

// WithSpanKind sets the span kind.
func WithSpanKind(kind trace.SpanKind) SpanStartOption {
	return func(cfg *spanConfig) { cfg.kind = kind }
}

// WithAttributes attaches attributes to the span on start.
func WithAttributes(attrs map[string]any) SpanStartOption {
	return func(cfg *spanConfig) {
		if len(attrs) == 0 {
			return
		}
		if cfg.attributes == nil {
			cfg.attributes = make(map[string]any, len(attrs))
		}
		for k, v := range attrs {
			cfg.attributes[k] = v
		}
	}
}

// StartSpan begins a new span derived from ctx using the global provider.
// Without Setup the provider is a no-op and the span records nothing.
func StartSpan(ctx context.Context, name string, opts ...SpanStartOption) (context.Context, trace.Span) {
	cfg := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}
	startOpts := []trace.SpanStartOption{trace.WithSpanKind(cfg.kind)}
	if len(cfg.attributes) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(mapToAttributes(cfg.attributes)...))
	}
	return otel.Tracer(instrumentationName).Start(ctx, name, startOpts...)
}

// Finish ends span, recording err as the span status when non-nil.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceIDFromContext extracts the trace identifier, or "" when unavailable.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func mapToAttributes(attrs map[string]any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		out = append(out, attribute.KeyValue{Key: attribute.Key(k), Value: attributeValue(v)})
	}
	return out
}

func attributeValue(value any) attribute.Value {
	switch v := value.(type) {
	case string:
		return attribute.StringValue(v)
	case bool:
		return attribute.BoolValue(v)
	case int:
		return attribute.IntValue(v)
	case int64:
		return attribute.Int64Value(v)
	case float64:
		return attribute.Float64Value(v)
	case []string:
		return attribute.StringSliceValue(v)
	case fmt.Stringer:
		return attribute.StringValue(v.String())
	default:
		return attribute.StringValue(fmt.Sprint(v))
	}
}

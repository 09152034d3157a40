package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the OTel instrumentation scope used for spans and
// instruments created by this module.
const InstrumentationName = "github.com/tailored-agentic-units/pipeline"

// OTelObserver forwards events to OpenTelemetry. Every event increments the
// pipeline.events counter; events whose context carries a recording span
// are also attached to that span as span events.
type OTelObserver struct {
	events metric.Int64Counter
}

// NewOTelObserver creates an OTelObserver recording on the given meter.
// A nil meter uses the global meter provider.
func NewOTelObserver(meter metric.Meter) (*OTelObserver, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	events, err := meter.Int64Counter(
		"pipeline.events",
		metric.WithDescription("Pipeline observability events by type and source"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event counter: %w", err)
	}

	return &OTelObserver{events: events}, nil
}

func globalOTelObserver() Observer {
	obs, err := NewOTelObserver(nil)
	if err != nil {
		return NoOpObserver{}
	}
	return obs
}

func (o *OTelObserver) OnEvent(ctx context.Context, event Event) {
	o.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", string(event.Type)),
		attribute.String("event.source", event.Source),
	))

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(event.Data)+2)
	attrs = append(attrs,
		attribute.String("event.source", event.Source),
		attribute.String("event.severity", event.Level.String()),
	)

	for _, k := range event.Keys() {
		attrs = append(attrs, toAttribute(k, event.Data[k]))
	}

	span.AddEvent(string(event.Type),
		trace.WithTimestamp(event.Timestamp),
		trace.WithAttributes(attrs...),
	)
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
		return attribute.String(key, fmt.Sprint(v))
	}
}

package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tailored-agentic-units/pipeline/observability"
)

// runContext is the call-scoped state of one run, carried in the context
// passed through execution.
type runContext struct {
	id       string
	root     string
	observer observability.Observer
	tracing  bool
}

type runKey struct{}

var detached = &runContext{observer: observability.NoOpObserver{}}

func newRun(ctx context.Context, root string, observer observability.Observer, tracing bool) (context.Context, *runContext) {
	rc := &runContext{
		id:       uuid.New().String(),
		root:     root,
		observer: observer,
		tracing:  tracing,
	}
	return context.WithValue(ctx, runKey{}, rc), rc
}

// ensureRun reuses the run carried by ctx, or starts one rooted at root.
func ensureRun(ctx context.Context, root string, observer observability.Observer, tracing bool) (context.Context, *runContext) {
	if rc, ok := ctx.Value(runKey{}).(*runContext); ok {
		return ctx, rc
	}
	return newRun(ctx, root, observer, tracing)
}

func runFrom(ctx context.Context) *runContext {
	if rc, ok := ctx.Value(runKey{}).(*runContext); ok {
		return rc
	}
	return detached
}

// RunID returns the identifier of the run executing ctx, or "" outside a
// run. Stage functions can use it to correlate their own output.
func RunID(ctx context.Context) string {
	return runFrom(ctx).id
}

// startSpan opens a child span when the run is traced. The returned span is
// a no-op otherwise.
func (rc *runContext) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !rc.tracing {
		return ctx, trace.SpanFromContext(context.Background())
	}
	attrs = append(attrs,
		attribute.String("pipeline.root", rc.root),
		attribute.String("pipeline.run_id", rc.id),
	)
	return otel.Tracer(observability.InstrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (rc *runContext) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if rc.id != "" {
		data["run_id"] = rc.id
	}
	observability.Emit(ctx, rc.observer, typ, level, "pipeline", data)
}

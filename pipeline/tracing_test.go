package pipeline_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tailored-agentic-units/pipeline/pipeline"
	"github.com/tailored-agentic-units/pipeline/record"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func TestRun_Spans(t *testing.T) {
	sr := withSpanRecorder(t)

	p := pipeline.New("main", pipeline.WithTracing(true)).
		Stage(doubler(nil)).
		Stage(addOne())

	if _, err := p.Run(context.Background(), record.Record{"x": 5}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	names := map[string]int{}
	for _, s := range sr.Ended() {
		names[s.Name()]++
	}
	if names["pipeline.run"] != 1 {
		t.Errorf("expected one pipeline.run span, got %d", names["pipeline.run"])
	}
	if names["pipeline.stage"] != 2 {
		t.Errorf("expected two pipeline.stage spans, got %d", names["pipeline.stage"])
	}
}

func TestRun_TracingDisabled(t *testing.T) {
	sr := withSpanRecorder(t)

	p := pipeline.New("main", pipeline.WithTracing(false)).Stage(doubler(nil))

	if _, err := p.Run(context.Background(), record.Record{"x": 5}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := len(sr.Ended()); n != 0 {
		t.Errorf("expected no spans, got %d", n)
	}
}

package pipeline_test

import (
	"context"
	"sync/atomic"

	"github.com/tailored-agentic-units/pipeline/pipeline"
	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/schema"
)

func doubler(calls *atomic.Int64) *pipeline.Function {
	return pipeline.Func1("double", "x", func(_ context.Context, x int) (int, error) {
		if calls != nil {
			calls.Add(1)
		}
		return x * 2, nil
	}, pipeline.Outputs("x2"))
}

func addOne() *pipeline.Function {
	return pipeline.Func1("add_one", "x2", func(_ context.Context, x2 int) (int, error) {
		return x2 + 1, nil
	}, pipeline.Outputs("x2plus1"))
}

// constant produces field = value and counts its invocations.
func constant(name, field string, value any, calls *atomic.Int64) *pipeline.Function {
	return pipeline.NewFunction(name, schema.Empty(), schema.Names(field),
		func(context.Context, record.Record) (any, error) {
			if calls != nil {
				calls.Add(1)
			}
			return value, nil
		})
}

// tap records the value of field under a label each time it runs.
type tap struct {
	seen []string
}

func (tp *tap) stage(label string) *pipeline.Function {
	return pipeline.NewFunction("tap_"+label, schema.Empty(), schema.Empty(),
		func(context.Context, record.Record) (any, error) {
			tp.seen = append(tp.seen, label)
			return nil, nil
		})
}

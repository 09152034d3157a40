// Package pipeline composes named-field data pipelines from stages,
// lazily evaluated providers, nested branches, and conditional dispatch.
//
// # Overview
//
// A Pipeline is an ordered sequence of runnables plus a pool of providers.
// Every runnable declares the fields it reads and the fields it produces.
// At run time each stage's inputs are pulled from the pipeline's scope:
//
//  1. the scope's own record store
//  2. the first registered provider declaring the field, invoked once and
//     merged into the store
//  3. the parent scope, for nested branches
//
// A field none of these can supply fails the run with a MissingInputError.
//
// # Building
//
//	double := pipeline.Func1("double", "x", func(_ context.Context, x int) (int, error) {
//	    return x * 2, nil
//	}, pipeline.Outputs("x2"))
//
//	addOne := pipeline.Func1("add_one", "x2", func(_ context.Context, x2 int) (int, error) {
//	    return x2 + 1, nil
//	}, pipeline.Outputs("x2plus1"))
//
//	p := pipeline.New("main").
//	    Stage(double).
//	    Stage(addOne)
//
//	out, err := p.Run(ctx, record.Record{"x": 5})
//	// out == record.Record{"x2plus1": 11}
//
// # Conditional Dispatch
//
// Match selects at most one case by equality on a field, falling back to
// Default, and always runs Finally afterwards:
//
//	p.Match("x2plus1", func(m *pipeline.Match) {
//	    m.Case(11, func(b *pipeline.Pipeline) { b.Stage(eleven) })
//	    m.Default(func(b *pipeline.Pipeline) { b.Stage(other) })
//	    m.Finally(func(b *pipeline.Pipeline) { b.Stage(done) })
//	})
//
// If, ElseIf, and Else build the same node keyed on boolean fields.
//
// # Concurrency
//
// The built graph is read-only during runs. Every call to Run creates a
// fresh, call-scoped store, so one Pipeline may be run from many goroutines
// (see RunBatch). Memo tables of cacheable functions are synchronized and
// shared by all runs. Builder methods must not be called concurrently with
// runs.
package pipeline

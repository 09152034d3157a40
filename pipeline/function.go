package pipeline

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/pipeline/memo"
	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Func is the explicit-schema function form: it receives one record holding
// exactly the declared inputs and returns a value reshaped by
// schema.Normalize into the declared outputs.
type Func func(ctx context.Context, in record.Record) (any, error)

// Function is a runnable built from a Go function. The same Function may be
// registered as a stage (executed in sequence) or as a provider (executed
// on demand); its description is fixed at construction.
type Function struct {
	name    string
	inputs  schema.Schema
	outputs schema.Schema
	fn      Func
	table   *memo.Table
	sized   bool
	err     error
}

// FunctionOption configures a Function at construction.
type FunctionOption func(*functionOptions)

type functionOptions struct {
	outputs []string
	cached  bool
	size    int
}

// Outputs names the outputs of typed constructors (Func0..Func4). It is
// ignored by NewFunction, whose output schema is explicit.
func Outputs(names ...string) FunctionOption {
	return func(o *functionOptions) {
		o.outputs = names
	}
}

// Cached memoizes invocations by input values. The table size defaults to
// the owning pipeline's configured cache size.
func Cached() FunctionOption {
	return func(o *functionOptions) {
		o.cached = true
	}
}

// CacheSize memoizes invocations in a table of exactly n entries.
func CacheSize(n int) FunctionOption {
	return func(o *functionOptions) {
		o.cached = true
		o.size = n
	}
}

func collect(opts []FunctionOption) functionOptions {
	var o functionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewFunction builds a Function with explicit input and output schemas.
func NewFunction(name string, inputs, outputs schema.Schema, fn Func, opts ...FunctionOption) *Function {
	return newFunction(name, inputs, outputs, fn, collect(opts))
}

func newFunction(name string, inputs, outputs schema.Schema, fn Func, o functionOptions) *Function {
	f := &Function{
		name:    name,
		inputs:  inputs,
		outputs: outputs,
		fn:      fn,
	}

	switch {
	case name == "":
		f.err = configError("function", "name is empty")
	case fn == nil:
		f.err = configError(name, "function is nil")
	case o.size < 0:
		f.err = configError(name, "cache size %d is negative", o.size)
	}
	if f.err == nil {
		f.err = errors.Join(annotate(name, inputs.Err()), annotate(name, outputs.Err()))
	}

	if o.cached && f.err == nil {
		table, err := memo.New(o.size)
		if err != nil {
			f.err = configError(name, "%v", err)
		}
		f.table = table
		f.sized = o.size > 0
	}

	return f
}

func annotate(name string, err error) error {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.Runnable == "" {
		cfgErr.Runnable = name
	}
	return err
}

func (f *Function) Name() string { return f.name }

func (f *Function) Inputs() schema.Schema { return f.inputs }

func (f *Function) Outputs() schema.Schema { return f.outputs }

func (f *Function) Cacheable() bool { return f.table != nil }

func (f *Function) validate() error { return f.err }

func (f *Function) ClearCache() {
	if f.table != nil {
		f.table.Purge()
	}
}

// CacheStats reports memo lookups. It is zero for functions that are not
// cacheable.
func (f *Function) CacheStats() memo.Stats {
	if f.table == nil {
		return memo.Stats{}
	}
	return f.table.Stats()
}

// resize applies a pipeline's cache size to a table built without an
// explicit size.
func (f *Function) resize(size int) {
	if f.table != nil && !f.sized && size > 0 && size != f.table.Size() {
		f.table.Resize(size)
	}
}

// Invoke validates in against the input schema, then returns the memoized
// output for the same input values or calls the function and normalizes its
// result.
func (f *Function) Invoke(ctx context.Context, in record.Record) (record.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.inputs.Validate(in); err != nil {
		return nil, err
	}

	args := record.Record(f.inputs.Project(in))
	if f.table == nil {
		return f.call(ctx, args)
	}

	names := f.inputs.Names()
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = args[n]
	}

	key, err := memo.NewKey(names, values)
	if err != nil {
		return nil, err
	}

	rc := runFrom(ctx)
	if out, ok := f.table.Get(key); ok {
		rc.emit(ctx, EventCacheHit, observability.LevelVerbose, map[string]any{"function": f.name})
		return out, nil
	}
	rc.emit(ctx, EventCacheMiss, observability.LevelVerbose, map[string]any{"function": f.name})

	out, err := f.call(ctx, args)
	if err != nil {
		return nil, err
	}
	f.table.Add(key, out)
	return out, nil
}

func (f *Function) call(ctx context.Context, args record.Record) (record.Record, error) {
	raw, err := f.fn(ctx, args)
	if err != nil {
		return nil, err
	}

	out, err := schema.Normalize(f.outputs, raw)
	if err != nil {
		return nil, annotate(f.name, err)
	}
	return record.Record(out), nil
}

func (f *Function) run(ctx context.Context, in record.Record, _ *scope) (record.Record, error) {
	return f.Invoke(ctx, in)
}

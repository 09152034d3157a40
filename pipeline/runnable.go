package pipeline

import (
	"context"

	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Runnable is a node of a pipeline graph. The set of implementations is
// closed: *Function (registered as a stage or as a provider), *Pipeline
// (sequential composition, usable as a branch), and *Dispatch (conditional
// dispatch).
type Runnable interface {
	// Name identifies the runnable in events and errors.
	Name() string

	// Inputs declares the fields resolved before invocation.
	Inputs() schema.Schema

	// Outputs declares the fields produced by invocation.
	Outputs() schema.Schema

	// Cacheable reports whether invocations are memoized.
	Cacheable() bool

	// ClearCache empties memo tables, recursively for composite nodes.
	ClearCache()

	// Invoke runs the node on a record holding its resolved inputs and
	// returns the produced record.
	Invoke(ctx context.Context, in record.Record) (record.Record, error)

	// run invokes the node within an executing scope, which composite
	// nodes use as the parent of their own scopes.
	run(ctx context.Context, in record.Record, sc *scope) (record.Record, error)

	// validate reports declaration errors, recursively for composite nodes.
	validate() error
}

var (
	_ Runnable = (*Function)(nil)
	_ Runnable = (*Pipeline)(nil)
	_ Runnable = (*Dispatch)(nil)
)

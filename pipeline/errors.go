package pipeline

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/pipeline/memo"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Error taxonomy shared with the schema and memo packages.
type (
	ConfigurationError = schema.ConfigurationError
	MissingInputError  = schema.MissingInputError
	TypeMismatchError  = schema.TypeMismatchError
	CacheKeyError      = memo.CacheKeyError
)

// StageError attaches the failing runnable to an error raised inside a
// pipeline scope. Each enclosing scope adds its own StageError, so the
// chain of wrappers traces the failure from the outermost pipeline inward.
type StageError struct {
	// Pipeline names the scope in which the runnable was executing
	Pipeline string

	// Stage names the failing runnable
	Stage string

	// Index is the runnable's position in the sequence, or -1 for providers
	// and dispatch arms
	Index int

	Err error
}

func (e *StageError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("pipeline %s: %s: %v", e.Pipeline, e.Stage, e.Err)
	}
	return fmt.Sprintf("pipeline %s: stage %d (%s): %v", e.Pipeline, e.Index, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Path returns the runnable names from the outermost scope to the
// innermost failing runnable.
func (e *StageError) Path() []string {
	path := []string{e.Stage}
	var inner *StageError
	for err := e.Err; errors.As(err, &inner); err = inner.Err {
		path = append(path, inner.Stage)
	}
	return path
}

// BatchError identifies which input of a batch failed.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch run %d failed: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

func configError(runnable, format string, args ...any) error {
	return &ConfigurationError{Runnable: runnable, Reason: fmt.Sprintf(format, args...)}
}

package pipeline

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// Typed constructors derive schemas from type parameters at construction.
// Each parameter is bound to a named input field typed by its type
// parameter (any yields an open type), and the output schema is inferred
// from R by schema.Infer, guided by the Outputs option. Resolved values are
// passed positionally.

// Func0 builds a function with no inputs, typically a provider of constants.
func Func0[R any](name string, fn func(context.Context) (R, error), opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, _ record.Record) (any, error) {
			r, err := fn(ctx)
			return r, err
		}
	}
	return newFunction(name, schema.Empty(), outputsOf[R](o), call, o)
}

func Func1[A, R any](name, a string, fn func(context.Context, A) (R, error), opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			r, err := fn(ctx, va)
			return r, err
		}
	}
	return newFunction(name, inputsOf(field[A](a)), outputsOf[R](o), call, o)
}

func Func2[A, B, R any](name, a, b string, fn func(context.Context, A, B) (R, error), opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			vb, err := arg[B](in, b)
			if err != nil {
				return nil, err
			}
			r, err := fn(ctx, va, vb)
			return r, err
		}
	}
	return newFunction(name, inputsOf(field[A](a), field[B](b)), outputsOf[R](o), call, o)
}

func Func3[A, B, C, R any](name, a, b, c string, fn func(context.Context, A, B, C) (R, error), opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			vb, err := arg[B](in, b)
			if err != nil {
				return nil, err
			}
			vc, err := arg[C](in, c)
			if err != nil {
				return nil, err
			}
			r, err := fn(ctx, va, vb, vc)
			return r, err
		}
	}
	return newFunction(name, inputsOf(field[A](a), field[B](b), field[C](c)), outputsOf[R](o), call, o)
}

func Func4[A, B, C, D, R any](name, a, b, c, d string, fn func(context.Context, A, B, C, D) (R, error), opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			vb, err := arg[B](in, b)
			if err != nil {
				return nil, err
			}
			vc, err := arg[C](in, c)
			if err != nil {
				return nil, err
			}
			vd, err := arg[D](in, d)
			if err != nil {
				return nil, err
			}
			r, err := fn(ctx, va, vb, vc, vd)
			return r, err
		}
	}
	return newFunction(name, inputsOf(field[A](a), field[B](b), field[C](c), field[D](d)), outputsOf[R](o), call, o)
}

// Effect1 builds a side-effecting function with no outputs.
func Effect1[A any](name, a string, fn func(context.Context, A) error, opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			return nil, fn(ctx, va)
		}
	}
	return newFunction(name, inputsOf(field[A](a)), schema.Empty(), call, o)
}

func Effect2[A, B any](name, a, b string, fn func(context.Context, A, B) error, opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			vb, err := arg[B](in, b)
			if err != nil {
				return nil, err
			}
			return nil, fn(ctx, va, vb)
		}
	}
	return newFunction(name, inputsOf(field[A](a), field[B](b)), schema.Empty(), call, o)
}

func Effect3[A, B, C any](name, a, b, c string, fn func(context.Context, A, B, C) error, opts ...FunctionOption) *Function {
	o := collect(opts)
	var call Func
	if fn != nil {
		call = func(ctx context.Context, in record.Record) (any, error) {
			va, err := arg[A](in, a)
			if err != nil {
				return nil, err
			}
			vb, err := arg[B](in, b)
			if err != nil {
				return nil, err
			}
			vc, err := arg[C](in, c)
			if err != nil {
				return nil, err
			}
			return nil, fn(ctx, va, vb, vc)
		}
	}
	return newFunction(name, inputsOf(field[A](a), field[B](b), field[C](c)), schema.Empty(), call, o)
}

func field[T any](name string) schema.Field {
	return schema.Field{Name: name, Type: schema.TypeOf[T]()}
}

func inputsOf(fields ...schema.Field) schema.Schema {
	return schema.New(fields...)
}

func outputsOf[R any](o functionOptions) schema.Schema {
	return schema.Infer(reflect.TypeFor[R](), o.outputs...)
}

// arg extracts a positional argument. A nil value yields the zero value of
// A; presence and type were validated against the input schema already.
func arg[A any](in record.Record, name string) (A, error) {
	var zero A
	v, ok := in[name]
	if !ok || v == nil {
		return zero, nil
	}
	a, ok := v.(A)
	if !ok {
		return zero, &TypeMismatchError{Field: name, Want: reflect.TypeFor[A]().String(), Got: fmt.Sprintf("%T", v)}
	}
	return a, nil
}

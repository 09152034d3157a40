package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tailored-agentic-units/pipeline/pipeline"
	"github.com/tailored-agentic-units/pipeline/registry"
)

// registerBuiltins adds the runnables pipeline files can reference by name.
// print writes to w.
func registerBuiltins(reg *registry.Registry, w io.Writer) error {
	builtins := []pipeline.Runnable{
		pipeline.Func1("double", "x", func(_ context.Context, x int) (int, error) {
			return x * 2, nil
		}, pipeline.Outputs("x2")),

		pipeline.Func1("add_one", "x2", func(_ context.Context, x2 int) (int, error) {
			return x2 + 1, nil
		}, pipeline.Outputs("x2plus1")),

		pipeline.Func1("square", "x", func(_ context.Context, x int) (int, error) {
			return x * x, nil
		}, pipeline.Outputs("squared"), pipeline.Cached()),

		pipeline.Func1("upper", "text", func(_ context.Context, text string) (string, error) {
			return strings.ToUpper(text), nil
		}, pipeline.Outputs("text")),

		pipeline.Func0("datetime", func(context.Context) (string, error) {
			return time.Now().Format(time.RFC3339), nil
		}, pipeline.Outputs("now")),

		pipeline.Effect1("print", "message", func(_ context.Context, message any) error {
			_, err := fmt.Fprintln(w, message)
			return err
		}),
	}

	for _, r := range builtins {
		if err := reg.Register(r.Name(), r); err != nil {
			return fmt.Errorf("failed to register builtin: %w", err)
		}
	}
	return nil
}

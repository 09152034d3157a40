package pipeline

import (
	"context"

	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/record"
	"github.com/tailored-agentic-units/pipeline/schema"
)

// scope is one executing level of the graph: a store, the providers
// registered at that level, and the enclosing scope used for read fallback.
type scope struct {
	name      string
	store     *record.Store
	providers []Runnable
	parent    *scope
	resolving map[string]bool
}

func newScope(ctx context.Context, name string, providers []Runnable, parent *scope) *scope {
	rc := runFrom(ctx)
	return &scope{
		name:      name,
		store:     record.NewStore(ctx, name, rc.id, rc.observer),
		providers: providers,
		parent:    parent,
		resolving: make(map[string]bool),
	}
}

// provider returns the first registered provider declaring field.
func (sc *scope) provider(field string) Runnable {
	for _, p := range sc.providers {
		if p.Outputs().Has(field) {
			return p
		}
	}
	return nil
}

// resolve returns field from the local store, else from the first local
// provider declaring it, else from the parent scope.
func (sc *scope) resolve(ctx context.Context, field string) (any, error) {
	if v, ok := sc.store.Get(field); ok {
		return v, nil
	}

	if p := sc.provider(field); p != nil {
		return sc.invokeProvider(ctx, p, field)
	}

	if sc.parent != nil {
		return sc.parent.resolve(ctx, field)
	}

	return nil, &MissingInputError{Field: field, Scope: sc.name}
}

// invokeProvider runs p to produce field in this scope. Every failure is
// wrapped with the scope and provider name.
func (sc *scope) invokeProvider(ctx context.Context, p Runnable, field string) (any, error) {
	v, err := sc.pull(ctx, p, field)
	if err != nil {
		return nil, &StageError{Pipeline: sc.name, Stage: p.Name(), Index: -1, Err: err}
	}
	return v, nil
}

func (sc *scope) pull(ctx context.Context, p Runnable, field string) (any, error) {
	if sc.resolving[field] {
		return nil, configError(p.Name(), "cyclic provider dependency on field %q", field)
	}
	sc.resolving[field] = true
	defer delete(sc.resolving, field)

	in, err := sc.resolveAll(ctx, p.Inputs())
	if err != nil {
		return nil, err
	}

	rc := runFrom(ctx)
	rc.emit(ctx, EventProviderInvoke, observability.LevelVerbose, map[string]any{
		"pipeline": sc.name,
		"provider": p.Name(),
		"field":    field,
	})

	out, err := p.run(ctx, in, sc)
	if err != nil {
		return nil, err
	}
	sc.store.Merge(ctx, out)

	v, ok := out[field]
	if !ok {
		return nil, configError(p.Name(), "provider did not produce declared output %q", field)
	}
	return v, nil
}

// resolveAll resolves every field of s in declaration order.
func (sc *scope) resolveAll(ctx context.Context, s schema.Schema) (record.Record, error) {
	in := make(record.Record, s.Len())
	for _, name := range s.Names() {
		v, err := sc.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		in[name] = v
	}
	return in, nil
}

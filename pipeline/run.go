package pipeline

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/record"
)

// Run executes the pipeline as a top-level run. The initial record is
// validated against the dependency schema before any runnable executes,
// and the result is the final scope projected onto the output schema.
//
// Declared outputs absent from the scope are pulled through local
// providers; those still unavailable are omitted. When no output schema is
// pinned and none can be inferred, the whole scope is returned.
func (p *Pipeline) Run(ctx context.Context, in record.Record) (record.Record, error) {
	ctx, rc := newRun(ctx, p.name, p.observer, p.tracing)
	ctx, span := rc.startSpan(ctx, "pipeline.run", attribute.String("pipeline.name", p.name))

	start := time.Now()
	rc.emit(ctx, EventPipelineStart, observability.LevelInfo, map[string]any{
		"pipeline": p.name,
		"inputs":   len(in),
	})

	out, err := p.runTop(ctx, in)
	endSpan(span, err)

	if err != nil {
		rc.emit(ctx, EventPipelineFailed, observability.LevelError, map[string]any{
			"pipeline": p.name,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, err
	}

	rc.emit(ctx, EventPipelineComplete, observability.LevelInfo, map[string]any{
		"pipeline": p.name,
		"outputs":  len(out),
		"duration": time.Since(start),
	})
	return out, nil
}

func (p *Pipeline) runTop(ctx context.Context, in record.Record) (record.Record, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	sc, err := p.execute(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	return p.project(ctx, sc)
}

// Invoke runs the pipeline as a branch: the result is its entire local
// scope. Called outside a run, it starts one.
func (p *Pipeline) Invoke(ctx context.Context, in record.Record) (record.Record, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	ctx, _ = ensureRun(ctx, p.name, p.observer, p.tracing)
	return p.run(ctx, in, nil)
}

func (p *Pipeline) run(ctx context.Context, in record.Record, parent *scope) (record.Record, error) {
	sc, err := p.execute(ctx, in, parent)
	if err != nil {
		return nil, err
	}
	return sc.store.Snapshot(), nil
}

// execute validates in against the dependency schema, then runs each node
// in order within a fresh scope chained to parent.
func (p *Pipeline) execute(ctx context.Context, in record.Record, parent *scope) (*scope, error) {
	if err := p.Inputs().Validate(in); err != nil {
		var missing *MissingInputError
		if errors.As(err, &missing) {
			missing.Scope = p.name
		}
		return nil, err
	}

	rc := runFrom(ctx)
	sc := newScope(ctx, p.name, p.providers, parent)
	sc.store.Merge(ctx, in)

	for i, node := range p.nodes {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Pipeline: p.name, Stage: node.Name(), Index: i, Err: err}
		}

		start := time.Now()
		rc.emit(ctx, EventStageStart, observability.LevelVerbose, map[string]any{
			"pipeline": p.name,
			"stage":    node.Name(),
			"index":    i,
		})

		out, err := p.step(ctx, sc, node)
		if err != nil {
			return nil, &StageError{Pipeline: p.name, Stage: node.Name(), Index: i, Err: err}
		}
		sc.store.Merge(ctx, out)

		rc.emit(ctx, EventStageComplete, observability.LevelVerbose, map[string]any{
			"pipeline": p.name,
			"stage":    node.Name(),
			"index":    i,
			"outputs":  len(out),
			"duration": time.Since(start),
		})
	}

	return sc, nil
}

// step resolves the inputs of node in sc and runs it.
func (p *Pipeline) step(ctx context.Context, sc *scope, node Runnable) (record.Record, error) {
	ctx, span := runFrom(ctx).startSpan(ctx, "pipeline.stage",
		attribute.String("pipeline.name", p.name),
		attribute.String("pipeline.stage", node.Name()),
	)

	in, err := sc.resolveAll(ctx, node.Inputs())
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	out, err := node.run(ctx, in, sc)
	endSpan(span, err)
	return out, err
}

func (p *Pipeline) project(ctx context.Context, sc *scope) (record.Record, error) {
	outputs := p.Outputs()
	if p.returns == nil && outputs.Len() == 0 {
		return sc.store.Snapshot(), nil
	}

	out := make(record.Record, outputs.Len())
	for _, name := range outputs.Names() {
		v, ok := sc.store.Get(name)
		if !ok {
			pr := sc.provider(name)
			if pr == nil {
				continue
			}
			var err error
			if v, err = sc.invokeProvider(ctx, pr, name); err != nil {
				return nil, err
			}
		}
		if err := outputs.Check(name, v); err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

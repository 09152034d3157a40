package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/pipeline/observability"
	"github.com/tailored-agentic-units/pipeline/record"
)

// RunBatch runs the pipeline once per input, at most limit at a time, and
// returns the results in input order. Every run has its own store; memo
// tables are shared. The first failure cancels the remaining runs and is
// returned as a *BatchError. A limit of zero or less uses the pipeline's
// configured batch limit.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []record.Record, limit int) ([]record.Record, error) {
	if limit <= 0 {
		limit = p.batchLimit
	}

	start := time.Now()
	observability.Emit(ctx, p.observer, EventBatchStart, observability.LevelInfo, "pipeline", map[string]any{
		"pipeline": p.name,
		"runs":     len(inputs),
		"limit":    limit,
	})

	results := make([]record.Record, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, in := range inputs {
		g.Go(func() error {
			out, err := p.Run(gctx, in)
			if err != nil {
				return &BatchError{Index: i, Err: err}
			}
			results[i] = out
			return nil
		})
	}

	err := g.Wait()

	data := map[string]any{
		"pipeline": p.name,
		"runs":     len(inputs),
		"duration": time.Since(start),
	}
	if err != nil {
		data["error"] = err.Error()
	}
	observability.Emit(ctx, p.observer, EventBatchComplete, observability.LevelInfo, "pipeline", data)

	if err != nil {
		return nil, err
	}
	return results, nil
}

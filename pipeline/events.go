package pipeline

import "github.com/tailored-agentic-units/pipeline/observability"

const (
	// Runs
	EventPipelineStart    observability.EventType = "pipeline.start"
	EventPipelineComplete observability.EventType = "pipeline.complete"
	EventPipelineFailed   observability.EventType = "pipeline.failed"

	// Sequence execution
	EventStageStart     observability.EventType = "stage.start"
	EventStageComplete  observability.EventType = "stage.complete"
	EventProviderInvoke observability.EventType = "provider.invoke"
	EventDispatchSelect observability.EventType = "dispatch.select"

	// Memoization
	EventCacheHit  observability.EventType = "cache.hit"
	EventCacheMiss observability.EventType = "cache.miss"

	// Batches
	EventBatchStart    observability.EventType = "batch.start"
	EventBatchComplete observability.EventType = "batch.complete"
)

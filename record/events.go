package record

import "github.com/tailored-agentic-units/pipeline/observability"

const (
	EventStoreCreate observability.EventType = "store.create"
	EventStoreSet    observability.EventType = "store.set"
	EventStoreMerge  observability.EventType = "store.merge"
)

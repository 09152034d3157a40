package record

import (
	"context"
	"maps"

	"github.com/tailored-agentic-units/pipeline/observability"
)

// Store is the mutable record of one pipeline scope for the duration of one
// run. Keys are never removed; a write overwrites any same-named key.
//
// A Store belongs to a single run and is not safe for concurrent use.
// Parent fallback is performed by the resolver, not by the Store: a Store
// only ever reads and writes its own scope.
type Store struct {
	data     Record
	scope    string
	runID    string
	observer observability.Observer
}

// NewStore creates an empty Store for the named scope of run runID.
// If observer is nil, NoOpObserver is used.
func NewStore(ctx context.Context, scope, runID string, observer observability.Observer) *Store {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	s := &Store{
		data:     make(Record),
		scope:    scope,
		runID:    runID,
		observer: observer,
	}

	s.emit(ctx, EventStoreCreate, map[string]any{})
	return s
}

// Scope returns the name of the scope owning the store.
func (s *Store) Scope() string {
	return s.scope
}

// RunID returns the identifier of the run owning the store.
func (s *Store) RunID() string {
	return s.runID
}

// Get reads name from this scope only.
func (s *Store) Get(name string) (any, bool) {
	v, ok := s.data[name]
	return v, ok
}

// Set writes a single value, overwriting any existing value.
func (s *Store) Set(ctx context.Context, name string, value any) {
	s.data[name] = value
	s.emit(ctx, EventStoreSet, map[string]any{"key": name})
}

// Merge writes every entry of r, overwriting same-named keys.
func (s *Store) Merge(ctx context.Context, r Record) {
	if len(r) == 0 {
		return
	}
	maps.Copy(s.data, r)
	s.emit(ctx, EventStoreMerge, map[string]any{"keys": r.Keys()})
}

// Len returns the number of stored fields.
func (s *Store) Len() int {
	return len(s.data)
}

// Snapshot returns an independent copy of the stored record.
func (s *Store) Snapshot() Record {
	return s.data.Clone()
}

func (s *Store) emit(ctx context.Context, typ observability.EventType, data map[string]any) {
	data["scope"] = s.scope
	data["run_id"] = s.runID
	observability.Emit(ctx, s.observer, typ, observability.LevelVerbose, "record", data)
}

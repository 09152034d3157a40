// Package memo provides bounded, least-recently-used memo tables for
// cacheable runnables. A table is owned by one runnable and shared by every
// run that invokes it; access is synchronized.
package memo

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tailored-agentic-units/pipeline/record"
)

// DefaultSize is the capacity used when a table is created with size ≤ 0.
const DefaultSize = 128

// Stats reports cumulative lookups since the table was created.
type Stats struct {
	Hits   int64
	Misses int64
}

// Table maps input keys to previously produced output records.
type Table struct {
	cache  *lru.Cache[Key, record.Record]
	size   atomic.Int64
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a table holding at most size entries.
func New(size int) (*Table, error) {
	if size <= 0 {
		size = DefaultSize
	}

	cache, err := lru.New[Key, record.Record](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memo table: %w", err)
	}

	t := &Table{cache: cache}
	t.size.Store(int64(size))
	return t, nil
}

// Get returns a copy of the record stored for k.
func (t *Table) Get(k Key) (record.Record, bool) {
	r, ok := t.cache.Get(k)
	if !ok {
		t.misses.Add(1)
		return nil, false
	}
	t.hits.Add(1)
	return r.Clone(), true
}

// Add stores a copy of r under k, evicting the least recently used entry
// when the table is full.
func (t *Table) Add(k Key, r record.Record) {
	t.cache.Add(k, r.Clone())
}

// Purge empties the table. Stats are kept.
func (t *Table) Purge() {
	t.cache.Purge()
}

// Len returns the number of stored entries.
func (t *Table) Len() int {
	return t.cache.Len()
}

// Size returns the table capacity.
func (t *Table) Size() int {
	return int(t.size.Load())
}

// Resize changes the capacity, evicting least recently used entries when
// shrinking. A size ≤ 0 is ignored.
func (t *Table) Resize(size int) {
	if size <= 0 {
		return
	}
	t.cache.Resize(size)
	t.size.Store(int64(size))
}

func (t *Table) Stats() Stats {
	return Stats{Hits: t.hits.Load(), Misses: t.misses.Load()}
}

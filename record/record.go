// Package record provides the named-value records exchanged between
// runnables and the call-scoped store a pipeline scope reads and writes
// during one run.
package record

import (
	"maps"
	"slices"
)

// Record maps field names to values.
type Record map[string]any

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Clone returns a shallow copy. Cloning a nil Record yields an empty one.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Merge copies every entry of other into r, overwriting same-named keys.
func (r Record) Merge(other Record) {
	maps.Copy(r, other)
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

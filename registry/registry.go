// Package registry maps names to runnables so declarative pipeline files
// can refer to Go functions by name.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/pipeline/pipeline"
)

// Registry is a named set of runnables. The zero value is not usable; call
// New.
type Registry struct {
	entries map[string]pipeline.Runnable
	mu      sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]pipeline.Runnable)}
}

// Default is the process-wide registry used by the package-level functions.
var Default = New()

// Register adds r under name.
// Returns ErrAlreadyExists if name is taken; use Replace to swap an entry.
// Thread-safe for concurrent registration.
func (r *Registry) Register(name string, runnable pipeline.Runnable) error {
	if name == "" {
		return ErrEmptyName
	}
	if runnable == nil {
		return fmt.Errorf("%w: %s", ErrNilRunnable, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	r.entries[name] = runnable
	return nil
}

// Replace swaps the runnable registered under name.
// Returns ErrNotFound if nothing is registered under name.
func (r *Registry) Replace(name string, runnable pipeline.Runnable) error {
	if name == "" {
		return ErrEmptyName
	}
	if runnable == nil {
		return fmt.Errorf("%w: %s", ErrNilRunnable, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.entries[name] = runnable
	return nil
}

// Get returns the runnable registered under name.
func (r *Registry) Get(name string) (pipeline.Runnable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runnable, exists := r.entries[name]
	return runnable, exists
}

// Lookup is Get with an ErrNotFound error for unknown names.
func (r *Registry) Lookup(name string) (pipeline.Runnable, error) {
	runnable, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return runnable, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds runnable to Default under its own name.
func Register(runnable pipeline.Runnable) error {
	if runnable == nil {
		return ErrNilRunnable
	}
	return Default.Register(runnable.Name(), runnable)
}

// Replace swaps the runnable in Default registered under runnable's name.
func Replace(runnable pipeline.Runnable) error {
	if runnable == nil {
		return ErrNilRunnable
	}
	return Default.Replace(runnable.Name(), runnable)
}

// Get returns the runnable registered in Default under name.
func Get(name string) (pipeline.Runnable, bool) {
	return Default.Get(name)
}

// Names returns the names registered in Default.
func Names() []string {
	return Default.Names()
}

package mhw

import (
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// Registry maps hardware generation names to their definitions.
// Sub-packages keep one registry each and fill it from init(),
// following the database/sql driver pattern:
//
//	func init() {
//	    generations.Register("xe2_lpm", xe2Lpm)
//	}
type Registry[G any] struct {
	kind string

	mu      sync.RWMutex
	entries map[string]G
}

// NewRegistry returns an empty registry. kind names the registry in panics
// and errors ("vdenc", "blt").
func NewRegistry[G any](kind string) *Registry[G] {
	return &Registry[G]{kind: kind, entries: make(map[string]G)}
}

// Register adds a generation under name.
//
// Register panics if name is empty or already registered, so that
// duplicate registrations are caught during program initialization rather
// than silently replacing a generation.
func (r *Registry[G]) Register(name string, g G) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		panic(r.kind + ": Register name is empty")
	}
	if _, dup := r.entries[name]; dup {
		panic(r.kind + ": Register called twice for " + name)
	}
	r.entries[name] = g
}

// Unregister removes a generation. It is a no-op for unknown names.
// Intended for tests.
func (r *Registry[G]) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Lookup returns the generation registered under name.
func (r *Registry[G]) Lookup(name string) (G, error) {
	r.mu.RLock()
	g, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		var zero G
		return zero, fmt.Errorf("%s: %w %q", r.kind, ErrUnknownGeneration, name)
	}
	return g, nil
}

// Names returns the registered names in sorted order.
func (r *Registry[G]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := maps.Keys(r.entries)
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name is registered.
func (r *Registry[G]) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

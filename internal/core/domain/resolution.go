package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Resolution is the deduplicated, flattened result of traversing a dependency
// graph. Iteration order is the resolver's traversal order, which the lock
// document reproduces.
type Resolution struct {
	deps  map[string]*ResolvedDependency
	order []string
}

// NewResolution creates a new empty Resolution.
func NewResolution() *Resolution {
	return &Resolution{
		deps: make(map[string]*ResolvedDependency),
	}
}

// Add appends a resolved dependency. It returns an error if the name is
// already present; deduplication is the resolver's job, so a duplicate here
// indicates a programming error.
func (r *Resolution) Add(dep *ResolvedDependency) error {
	if _, exists := r.deps[dep.Name]; exists {
		return zerr.With(ErrDuplicateDependency, "dependency", dep.Name)
	}
	r.deps[dep.Name] = dep
	r.order = append(r.order, dep.Name)
	return nil
}

// Get returns the resolved dependency for the given name, or nil if absent.
func (r *Resolution) Get(name string) *ResolvedDependency {
	return r.deps[name]
}

// Len returns the number of resolved dependencies.
func (r *Resolution) Len() int {
	return len(r.order)
}

// Walk returns an iterator that yields dependencies in resolution order.
func (r *Resolution) Walk() iter.Seq[*ResolvedDependency] {
	return func(yield func(*ResolvedDependency) bool) {
		for _, name := range r.order {
			if !yield(r.deps[name]) {
				return
			}
		}
	}
}

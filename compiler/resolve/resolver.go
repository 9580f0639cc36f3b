package resolve

import (
	"sync/atomic"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/memo"
)

// DefaultMaxDepth caps the inheritance walk. Cycles are excluded by the
// declaration model, but a malformed manifest must not hang the run.
const DefaultMaxDepth = 64

// Resolver computes the semantic model of entities against one registry.
// It holds the memoization stores for the run; all resolution methods are
// safe for concurrent use by sibling generation tasks.
//
// The caches are injected per run rather than held in package state, so a
// new run starts clean and nothing leaks across independent runs.
type Resolver struct {
	registry *Registry
	global   dtoforge.Cache
	scoped   *memo.ScopedStore
	maxDepth int

	stats stats
}

// stats counts the expensive underlying computations. A memoized hit does
// not increment them, which is what the cache idempotence tests observe.
type stats struct {
	propertyWalks   atomic.Int64
	relationInfers  atomic.Int64
	exclusionParses atomic.Int64
	nullableChecks  atomic.Int64
}

// Stats is a snapshot of the resolver's internal computation counters.
type Stats struct {
	PropertyWalks   int64
	RelationInfers  int64
	ExclusionParses int64
	NullableChecks  int64
}

// Stats returns a snapshot of the computation counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		PropertyWalks:   r.stats.propertyWalks.Load(),
		RelationInfers:  r.stats.relationInfers.Load(),
		ExclusionParses: r.stats.exclusionParses.Load(),
		NullableChecks:  r.stats.nullableChecks.Load(),
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache sets the global memoization store. The resolver calls only the
// Cache contract, so tests and callers may substitute their own.
func WithCache(c dtoforge.Cache) Option {
	return func(r *Resolver) {
		if c != nil {
			r.global = c
		}
	}
}

// WithMaxDepth caps the inheritance walk depth.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// New creates a resolver over the given registry.
func New(registry *Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: registry,
		global:   memo.NewStore(),
		scoped:   memo.NewScopedStore(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry this resolver resolves against.
func (r *Resolver) Registry() *Registry { return r.registry }

// Reset clears the global store. The declaration-scoped store is dropped
// with the resolver itself when the registry is discarded.
func (r *Resolver) Reset() {
	r.global.Clear()
}

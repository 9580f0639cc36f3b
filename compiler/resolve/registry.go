// Package resolve implements the semantic model of the generator: the
// entity registry, property inheritance, relation target resolution and
// per-operation field policies. It consumes the read-only declaration model
// from compiler/load and produces the generation contexts handed to the
// emitters.
package resolve

import (
	"fmt"

	"github.com/dtoforge/dtoforge/compiler/load"
)

// Registry is an immutable-after-construction mapping from entity name to
// declaration. It is built once per generation run from the full set of
// loaded entities and owns only the lookup index, never the declarations.
// Any need to add an entity requires rebuilding the registry.
type Registry struct {
	entities map[string]*load.Entity
	order    []*load.Entity
	warnings []string
}

// BuildRegistry indexes the given declarations by name in one pass.
// Entity names must be unique; on a duplicate the first registration wins
// and a warning diagnostic is recorded, keeping resolution deterministic.
func BuildRegistry(entities []*load.Entity) *Registry {
	r := &Registry{
		entities: make(map[string]*load.Entity, len(entities)),
		order:    make([]*load.Entity, 0, len(entities)),
	}
	for _, e := range entities {
		if e == nil {
			continue
		}
		if prev, ok := r.entities[e.Name]; ok {
			r.warnings = append(r.warnings, fmt.Sprintf(
				"duplicate entity %s (%s), keeping first registration (%s)",
				e.Name, e.Pos(), prev.Pos(),
			))
			continue
		}
		r.entities[e.Name] = e
		r.order = append(r.order, e)
	}
	return r
}

// Lookup returns the declaration registered under name. The second return
// value reports presence; an unknown name is a valid sentinel that callers
// use to decide fallback inference paths, never an error.
func (r *Registry) Lookup(name string) (*load.Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// Entities returns the registered declarations in registration order. The
// scheduler iterates entities in this order. Callers must not modify the
// returned slice.
func (r *Registry) Entities() []*load.Entity { return r.order }

// Len reports the number of registered entities.
func (r *Registry) Len() int { return len(r.order) }

// Warnings returns the diagnostics recorded while building the index.
func (r *Registry) Warnings() []string { return r.warnings }

package resolve

import (
	"github.com/dtoforge/dtoforge/compiler/load"
)

// propertiesKind is the declaration-scoped cache kind for resolved
// property lists.
const propertiesKind = "properties"

// Properties returns the full ordered property list of an entity,
// including inherited base-class properties. Base properties come first;
// an inherited property whose name is re-declared directly on the entity
// is dropped, and the child declaration appears in the entity's own
// sequence (override, not merge).
//
// The result is memoized per declaration since the same entity is visited
// by multiple generators. Callers must not modify the returned slice.
func (r *Resolver) Properties(e *load.Entity) []*load.Property {
	return r.properties(e, 0)
}

func (r *Resolver) properties(e *load.Entity, depth int) []*load.Property {
	if e == nil {
		return nil
	}
	if v, ok := r.scoped.Get(e, propertiesKind, ""); ok {
		return v.([]*load.Property)
	}
	r.stats.propertyWalks.Add(1)

	var inherited []*load.Property
	// The base chain is a tree walk upward; the depth cap only guards
	// against malformed manifests.
	if e.HasBase() && depth < r.maxDepth {
		if base, ok := r.registry.Lookup(e.Base); ok {
			inherited = r.properties(base, depth+1)
		}
	}

	props := make([]*load.Property, 0, len(inherited)+len(e.Properties))
	for _, p := range inherited {
		if e.Property(p.Name) == nil {
			props = append(props, p)
		}
	}
	props = append(props, e.Properties...)

	r.scoped.Set(e, propertiesKind, "", props)
	return props
}

// PropertyByName returns the resolved property with the given name,
// honoring override semantics.
func (r *Resolver) PropertyByName(e *load.Entity, name string) (*load.Property, bool) {
	for _, p := range r.Properties(e) {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Package operation defines the closed set of generation operations and
// the generator kinds that consume them.
package operation

import "fmt"

// Operation is a named generation context used to decide per-field
// inclusion and nullability.
type Operation string

// The closed operation set. Field exclusion annotations may name any
// subset of these.
const (
	Data     Operation = "data"
	Create   Operation = "create"
	Update   Operation = "update"
	FindMany Operation = "findMany"
)

// All returns all known operations in declaration order.
func All() []Operation {
	return []Operation{Data, Create, Update, FindMany}
}

// Valid reports if o is a member of the closed operation set.
func (o Operation) Valid() bool {
	switch o {
	case Data, Create, Update, FindMany:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (o Operation) String() string { return string(o) }

// Kind is one of the fixed set of artifact types producible per entity.
type Kind string

// The known generator kinds.
const (
	KindDTO       Kind = "dto"
	KindCreateDTO Kind = "create-dto"
	KindUpdateDTO Kind = "update-dto"
	KindFilter    Kind = "filter"
	KindMapper    Kind = "mapper"
)

// AllKinds returns all known generator kinds in declaration order.
func AllKinds() []Kind {
	return []Kind{KindDTO, KindCreateDTO, KindUpdateDTO, KindFilter, KindMapper}
}

// Valid reports if k is a known generator kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDTO, KindCreateDTO, KindUpdateDTO, KindFilter, KindMapper:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Operation returns the operation whose field policy governs the artifact
// this kind emits. The mapper reads the full data shape.
func (k Kind) Operation() Operation {
	switch k {
	case KindCreateDTO:
		return Create
	case KindUpdateDTO:
		return Update
	case KindFilter:
		return FindMany
	default:
		return Data
	}
}

// ParseKinds validates a list of kind names, preserving order and
// rejecting unknown or duplicate entries.
func ParseKinds(names []string) ([]Kind, error) {
	seen := make(map[Kind]struct{}, len(names))
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		k := Kind(name)
		if !k.Valid() {
			return nil, fmt.Errorf("operation: unknown generator kind %q", name)
		}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("operation: duplicate generator kind %q", name)
		}
		seen[k] = struct{}{}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Package load defines the declaration model supplied by the
// source-analysis front end: entity declarations with their properties and
// decorator invocations, already parsed into a structured manifest. The
// resolvers in compiler/resolve consume this model read-only; no source
// tokenization happens here.
package load

import (
	"fmt"
)

// Shape classifies the argument form of a decorator invocation. The front
// end produces the classification once; downstream code switches on it
// instead of re-parsing argument text.
type Shape uint8

// The four decorator argument shapes.
const (
	// ShapeNone is a decorator invoked with no arguments.
	ShapeNone Shape = iota
	// ShapeThunk is a no-argument function expression returning a bare
	// name, e.g. `() => Target`.
	ShapeThunk
	// ShapeIdent is a bare identifier argument, e.g. `Target`.
	ShapeIdent
	// ShapeOptions is an options-object literal argument with no explicit
	// target reference.
	ShapeOptions
)

var shapeNames = [...]string{
	ShapeNone:    "none",
	ShapeThunk:   "thunk",
	ShapeIdent:   "ident",
	ShapeOptions: "options",
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", s)
}

// Valid reports if s is a known shape.
func (s Shape) Valid() bool { return int(s) < len(shapeNames) }

// UnmarshalText decodes a shape from its manifest spelling.
func (s *Shape) UnmarshalText(text []byte) error {
	for i, name := range shapeNames {
		if name == string(text) {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("load: unknown decorator shape %q", text)
}

// MarshalText encodes a shape as its manifest spelling.
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("load: invalid decorator shape %d", s)
	}
	return []byte(shapeNames[s]), nil
}

// Well-known decorator names produced by the front end.
const (
	DecoratorEntity     = "Entity"
	DecoratorProperty   = "Property"
	DecoratorPrimaryKey = "PrimaryKey"
	DecoratorExclude    = "Exclude"
	DecoratorOneToOne   = "OneToOne"
	DecoratorOneToMany  = "OneToMany"
	DecoratorManyToOne  = "ManyToOne"
	DecoratorManyToMany = "ManyToMany"
)

// IsRelation reports if the decorator name declares a relation.
func IsRelation(name string) bool {
	switch name {
	case DecoratorOneToOne, DecoratorOneToMany, DecoratorManyToOne, DecoratorManyToMany:
		return true
	}
	return false
}

// ToMany reports if the relation decorator name declares a collection
// (to-many) relation.
func ToMany(name string) bool {
	return name == DecoratorOneToMany || name == DecoratorManyToMany
}

// Position describes a source position used only for diagnostics.
type Position struct {
	File   string `json:"file,omitempty" msgpack:"file,omitempty"`
	Line   int    `json:"line,omitempty" msgpack:"line,omitempty"`
	Column int    `json:"column,omitempty" msgpack:"column,omitempty"`
}

// String returns the file:line representation of the position.
func (p *Position) String() string {
	if p == nil || p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Decorator represents one decorator invocation on a property, classified
// by the front end into one of the four argument shapes.
type Decorator struct {
	Name string `json:"name"`
	// Shape classifies the first argument. ShapeThunk and ShapeIdent carry
	// the referenced name in Target.
	Shape Shape `json:"shape"`
	// Target is the referenced identifier for thunk/ident shapes.
	Target string `json:"target,omitempty"`
	// Options holds the decoded options-object members, for ShapeOptions
	// invocations and for trailing options arguments of other shapes.
	Options map[string]any `json:"options,omitempty"`
	// Raw is the original argument text. It is used for cache keys and
	// diagnostics only, never re-parsed for target resolution.
	Raw      string    `json:"raw,omitempty"`
	Position *Position `json:"position,omitempty"`
}

// BoolOption returns the named option as a bool, with ok reporting
// presence and type match.
func (d *Decorator) BoolOption(name string) (v, ok bool) {
	if d == nil || d.Options == nil {
		return false, false
	}
	v, ok = d.Options[name].(bool)
	return v, ok
}

// Property represents one declared property of an entity.
type Property struct {
	Name string `json:"name"`
	// Type is the declared type expression as written in the source,
	// e.g. "string", "Target | null" or "Collection<Target>".
	Type string `json:"type"`
	// Optional indicates the declaration carried an optionality marker.
	Optional   bool         `json:"optional,omitempty"`
	Decorators []*Decorator `json:"decorators,omitempty"`
	Position   *Position    `json:"position,omitempty"`

	entity *Entity
}

// Entity returns the owning entity declaration.
func (p *Property) Entity() *Entity { return p.entity }

// Decorator returns the first decorator with the given name, or nil.
func (p *Property) Decorator(name string) *Decorator {
	for _, d := range p.Decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// RelationDecorator returns the property's relation decorator, or nil if
// the property declares no relation.
func (p *Property) RelationDecorator() *Decorator {
	for _, d := range p.Decorators {
		if IsRelation(d.Name) {
			return d
		}
	}
	return nil
}

// IsPrimaryKey reports if the property carries the primary-key decorator.
func (p *Property) IsPrimaryKey() bool {
	return p.Decorator(DecoratorPrimaryKey) != nil
}

// Entity represents one entity declaration: a named class-like declaration
// owning an ordered list of properties and an optional single base entity
// reference. Identity is the declared name.
type Entity struct {
	Name string `json:"name"`
	// Base is the name of the base entity, empty for root entities. Base
	// chains form a tree walk upward; cycles are excluded by construction.
	Base        string         `json:"base,omitempty"`
	Properties  []*Property    `json:"properties,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty"`
	Position    *Position      `json:"position,omitempty"`
}

// NewEntity constructs an entity declaration programmatically and wires
// the property owner back-references. Front ends that assemble manifests
// in process use it instead of the JSON path; validation still happens
// when the manifest is built.
func NewEntity(name string, properties ...*Property) *Entity {
	e := &Entity{Name: name, Properties: properties}
	for _, p := range properties {
		p.entity = e
	}
	return e
}

// WithBase sets the base entity name and returns the entity.
func (e *Entity) WithBase(base string) *Entity {
	e.Base = base
	return e
}

// Property returns the direct property with the given name, or nil.
func (e *Entity) Property(name string) *Property {
	for _, p := range e.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// HasBase reports if the entity declares a base entity.
func (e *Entity) HasBase() bool { return e.Base != "" }

// Pos returns the position of the entity declaration for diagnostics.
func (e *Entity) Pos() string { return e.Position.String() }

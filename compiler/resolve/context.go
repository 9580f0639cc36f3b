package resolve

import (
	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/schema/fieldtype"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// Field is one resolved output field of a generation context.
type Field struct {
	// Property is the declaration the field was resolved from.
	Property *load.Property
	// Name of the field as declared.
	Name string
	// Info is the mapped output type.
	Info fieldtype.TypeInfo
	// Nullable reports the unioned nullability signals.
	Nullable bool
	// Optional reports the declaration's optionality marker only.
	Optional bool
	// Relation is the resolved relation descriptor, nil for scalars and
	// for to-one relations that degraded to plain fields.
	Relation *Relation

	excluded map[operation.Operation]bool
}

// Excluded reports whether the field is excluded from the given operation.
func (f *Field) Excluded(op operation.Operation) bool { return f.excluded[op] }

// Required reports if the field must be present on create.
func (f *Field) Required() bool { return !f.Nullable && !f.Optional }

// IsRelation reports if the field resolved to a relation.
func (f *Field) IsRelation() bool { return f.Relation != nil }

// Context is the resolved generation context of one entity, consumed by
// the emission layer: the ordered field list, the relation descriptors and
// the entity's primary key. It is immutable once built.
type Context struct {
	// Entity is the declaration this context was resolved from.
	Entity *load.Entity
	// Name of the entity.
	Name string
	// Fields is the full ordered, inheritance-resolved field list.
	// Per-operation views are obtained with FieldsFor.
	Fields []*Field
	// ID is the entity's primary-key field, nil when the entity has none.
	ID *Field
	// IDType is the primary-key output type of the entity itself.
	IDType fieldtype.TypeInfo
}

// FieldsFor returns the fields included in the artifact of the given
// operation, preserving order.
func (c *Context) FieldsFor(op operation.Operation) []*Field {
	out := make([]*Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if !f.Excluded(op) {
			out = append(out, f)
		}
	}
	return out
}

// Relations returns the resolved relation descriptors in field order.
func (c *Context) Relations() []*Relation {
	var out []*Relation
	for _, f := range c.Fields {
		if f.Relation != nil {
			out = append(out, f.Relation)
		}
	}
	return out
}

// HasID reports if the entity has a primary key.
func (c *Context) HasID() bool { return c.ID != nil }

// Context resolves the full generation context of an entity: property
// inheritance, relation targets, per-operation exclusion and nullability,
// and primary keys of the entity and of every relation target.
//
// A to-many relation whose target is unresolvable, or whose target has no
// extractable primary key, cannot be represented and is a hard resolution
// error. A to-one relation with an unresolvable target degrades to a plain
// field with no relation decoration.
func (r *Resolver) Context(e *load.Entity) (*Context, error) {
	c := &Context{Entity: e, Name: e.Name}
	props := r.Properties(e)
	c.Fields = make([]*Field, 0, len(props))
	for _, p := range props {
		f, err := r.field(p)
		if err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, f)
	}
	if idProp, ok := r.TargetID(e); ok {
		for _, f := range c.Fields {
			if f.Property == idProp {
				c.ID = f
				c.IDType = f.Info
				break
			}
		}
	}
	return c, nil
}

// field resolves one property into an output field.
func (r *Resolver) field(p *load.Property) (*Field, error) {
	f := &Field{
		Property: p,
		Name:     p.Name,
		Nullable: r.IsNullable(p),
		Optional: p.Optional,
		excluded: make(map[operation.Operation]bool, len(operation.All())),
	}
	for _, op := range operation.All() {
		f.excluded[op] = r.IsExcluded(p, op)
	}

	if d := p.RelationDecorator(); d != nil {
		rel, ok := r.Relation(p)
		if !ok {
			if load.ToMany(d.Name) {
				return nil, dtoforge.NewResolutionError(
					p.Entity().Name, p.Name, "",
					"collection relation target is unresolvable",
				)
			}
			// Degrade: keep the field, skip relation decoration.
			f.Info = r.scalarInfo(p)
			return f, nil
		}
		if rel.Kind == ToMany && !rel.TargetIDValid {
			return nil, dtoforge.NewResolutionError(
				p.Entity().Name, p.Name, "",
				"relation target "+rel.Target.Name+" has no extractable primary key",
			)
		}
		f.Relation = rel
		f.Info = fieldtype.TypeInfo{
			Type:  fieldtype.TypeEntity,
			Ident: rel.Target.Name,
			Slice: rel.Kind == ToMany,
		}
		return f, nil
	}

	f.Info = r.scalarInfo(p)
	return f, nil
}

// scalarInfo maps a non-relation property's declared type, with nullable
// union members stripped first.
func (r *Resolver) scalarInfo(p *load.Property) fieldtype.TypeInfo {
	return fieldtype.Parse(stripNullUnion(p.Type))
}

// TargetID returns the primary-key field of an entity, walking inherited
// properties: the property carrying the primary-key decorator wins, then a
// property conventionally named "id" or "_id".
func (r *Resolver) TargetID(e *load.Entity) (*load.Property, bool) {
	props := r.Properties(e)
	for _, p := range props {
		if p.IsPrimaryKey() {
			return p, true
		}
	}
	for _, p := range props {
		if p.Name == "id" || p.Name == "_id" {
			return p, true
		}
	}
	return nil, false
}

// TargetIDType returns the primary-key output type of an entity.
func (r *Resolver) TargetIDType(e *load.Entity) (fieldtype.TypeInfo, bool) {
	p, ok := r.TargetID(e)
	if !ok {
		return fieldtype.TypeInfo{}, false
	}
	return fieldtype.Parse(stripNullUnion(p.Type)), true
}

package resolve

import (
	"regexp"
	"strings"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/schema/fieldtype"
)

// Kind is the cardinality of a relation.
type Kind uint8

// Relation kinds.
const (
	ToOne Kind = iota
	ToMany
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == ToMany {
		return "to-many"
	}
	return "to-one"
}

// Relation is the resolved descriptor of a relation property: the owning
// property, the target declaration, the cardinality and nullability.
// Descriptors are computed on demand, cached and never mutated.
type Relation struct {
	// Property is the owning property.
	Property *load.Property
	// Decorator is the relation decorator the descriptor was resolved from.
	Decorator *load.Decorator
	// Target is the resolved target declaration.
	Target *load.Entity
	// Kind is the cardinality derived from the decorator name.
	Kind Kind
	// Nullable reports the owning property's nullability.
	Nullable bool
	// TargetID is the primary-key output type of the target entity.
	// TargetIDValid reports whether the target has an extractable
	// primary key at all.
	TargetID      fieldtype.TypeInfo
	TargetIDValid bool
}

// relationCacheKind is the global cache namespace for resolved targets.
const relationCacheKind = "relation"

// Relation resolves the relation descriptor of a property. The second
// return value is false when the property declares no relation decorator
// or the target cannot be resolved; callers degrade by skipping
// relation-specific decoration, or raise a resolution error themselves
// when the relation is structurally required.
func (r *Resolver) Relation(p *load.Property) (*Relation, bool) {
	d := p.RelationDecorator()
	if d == nil {
		return nil, false
	}
	target, ok := r.Target(d, p)
	if !ok {
		return nil, false
	}
	kind := ToOne
	if load.ToMany(d.Name) {
		kind = ToMany
	}
	rel := &Relation{
		Property:  p,
		Decorator: d,
		Target:    target,
		Kind:      kind,
		Nullable:  r.IsNullable(p),
	}
	rel.TargetID, rel.TargetIDValid = r.TargetIDType(target)
	return rel, true
}

// Target determines the entity declaration a relation decorator points to.
// Four resolution paths are tried in order:
//
//  1. thunk argument `() => Target`: look up the wrapped name;
//  2. bare identifier argument `Target`: look up that identifier;
//  3. options-object argument with no explicit target: infer from the
//     property's declared type;
//  4. no arguments at all: same type-based inference.
//
// Successful resolutions are memoized by (owning property, decorator text)
// to the stable target name, not the declaration object, so a cached name
// is re-looked-up in the current registry and can never leak a stale or
// cross-registry declaration reference.
func (r *Resolver) Target(d *load.Decorator, p *load.Property) (*load.Entity, bool) {
	key := dtoforge.CacheKey{
		Kind:     relationCacheKind,
		Entity:   p.Entity().Name,
		Property: p.Name,
		Extra:    d.Name + "(" + d.Raw + ")",
	}.String()
	if v, ok := r.global.Get(key); ok {
		return r.registry.Lookup(v.(string))
	}

	name, ok := r.targetName(d, p)
	if !ok {
		return nil, false
	}
	// Exact-name lookup only. An absent name is an explicit not-found; the
	// fuzzy substring fallback of older generators is deliberately gone.
	target, ok := r.registry.Lookup(name)
	if !ok {
		return nil, false
	}
	r.global.Set(key, name)
	return target, true
}

// targetName extracts the target entity name from the decorator or, for
// the option/argument-less shapes, infers it from the declared type.
func (r *Resolver) targetName(d *load.Decorator, p *load.Property) (string, bool) {
	switch d.Shape {
	case load.ShapeThunk, load.ShapeIdent:
		return d.Target, d.Target != ""
	default:
		return r.inferTypeTarget(p.Type)
	}
}

// Generic wrappers recognized as collection or single-reference markers.
// A single type argument unwraps to that argument's named type.
var wrapperRe = regexp.MustCompile(`^(?:Collection|Ref|Reference|IdentifiedReference)\s*<\s*(.+?)\s*>$`)

// qualifiedRe matches an import-qualified reference `<locator>.<Identifier>`.
var qualifiedRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_$]*\.([A-Za-z_][A-Za-z0-9_]*)`)

// inferTypeTarget performs type-based target inference over a declared
// type expression: strip null/undefined union members, unwrap a recognized
// single-argument generic wrapper, then take either the bare identifier or
// the last import-qualified identifier in the text.
func (r *Resolver) inferTypeTarget(typeText string) (string, bool) {
	r.stats.relationInfers.Add(1)
	s := stripNullUnion(typeText)
	if s == "" {
		return "", false
	}
	if m := wrapperRe.FindStringSubmatch(s); m != nil && topLevelSingle(m[1]) {
		s = strings.TrimSpace(m[1])
		// The wrapper argument may itself be nullable or qualified.
		s = stripNullUnion(s)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "[]")
	s = strings.TrimSpace(s)
	if isIdent(s) {
		return s, true
	}
	// When multiple qualified names appear in a complex type expression,
	// the entity reference is conventionally the final one.
	if ms := qualifiedRe.FindAllStringSubmatch(s, -1); len(ms) > 0 {
		return ms[len(ms)-1][1], true
	}
	return "", false
}

// stripNullUnion removes `null` and `undefined` members from a top-level
// union type expression and returns the remaining member(s) rejoined.
func stripNullUnion(typeText string) string {
	parts := splitTopLevel(typeText, '|')
	kept := parts[:0]
	for _, part := range parts {
		switch strings.TrimSpace(part) {
		case "null", "undefined", "":
		default:
			kept = append(kept, strings.TrimSpace(part))
		}
	}
	return strings.Join(kept, " | ")
}

// splitTopLevel splits s on sep, ignoring separators nested inside angle
// brackets, parentheses or brackets.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// topLevelSingle reports whether a wrapper argument list holds exactly one
// type argument.
func topLevelSingle(args string) bool {
	return len(splitTopLevel(args, ',')) == 1
}

// isIdent reports whether s is a single bare identifier.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

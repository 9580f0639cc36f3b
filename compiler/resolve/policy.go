package resolve

import (
	"regexp"
	"strings"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// Cache namespaces for field policies.
const (
	exclusionCacheKind = "exclusion"
	nullableKind       = "nullable"
)

// exclusion is the parsed form of an exclusion annotation argument.
type exclusion struct {
	all bool
	ops map[operation.Operation]struct{}
}

// IsExcluded reports whether a property is excluded from the artifact of
// the given operation. The source of truth is the property's exclusion
// annotation: boolean true excludes from all operations, false from none,
// and a set literal of operation names excludes only those named. An
// absent annotation means not excluded.
//
// The parsed decision is memoized per (property, operation).
func (r *Resolver) IsExcluded(p *load.Property, op operation.Operation) bool {
	key := dtoforge.CacheKey{
		Kind:     exclusionCacheKind,
		Entity:   p.Entity().Name,
		Property: p.Name,
		Extra:    op.String(),
	}.String()
	if v, ok := r.global.Get(key); ok {
		return v.(bool)
	}
	excluded := r.parseExclusion(p).excludes(op)
	r.global.Set(key, excluded)
	return excluded
}

// excludes applies the parsed annotation to one operation.
func (x exclusion) excludes(op operation.Operation) bool {
	if x.all {
		return true
	}
	_, ok := x.ops[op]
	return ok
}

// quotedRe matches single- or double-quoted names inside a set literal,
// tolerating arbitrary whitespace and newlines around them.
var quotedRe = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)

// parseExclusion parses the exclusion annotation argument of a property.
func (r *Resolver) parseExclusion(p *load.Property) exclusion {
	r.stats.exclusionParses.Add(1)
	d := p.Decorator(load.DecoratorExclude)
	if d == nil {
		return exclusion{}
	}
	arg := strings.TrimSpace(d.Raw)
	switch arg {
	case "", "false":
		return exclusion{}
	case "true":
		return exclusion{all: true}
	}
	x := exclusion{ops: make(map[operation.Operation]struct{})}
	for _, m := range quotedRe.FindAllStringSubmatch(arg, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if op := operation.Operation(name); op.Valid() {
			x.ops[op] = struct{}{}
		}
	}
	return x
}

// nullTokenRe matches null/undefined as whole words inside a declared type
// expression, including inside one member of a union.
var nullTokenRe = regexp.MustCompile(`(^|[^A-Za-z0-9_])(null|undefined)($|[^A-Za-z0-9_])`)

// IsNullable reports whether a property is nullable. Three independent
// signals are unioned, with no precedence between them:
//
//   - an explicit optionality marker on the declaration;
//   - the declared type textually containing null/undefined;
//   - an explicit `nullable: true` option on the field decorator.
//
// The decision is memoized per property.
func (r *Resolver) IsNullable(p *load.Property) bool {
	if v, ok := r.scoped.Get(p, nullableKind, ""); ok {
		return v.(bool)
	}
	r.stats.nullableChecks.Add(1)
	nullable := p.Optional || nullTokenRe.MatchString(p.Type) || nullableOption(p)
	r.scoped.Set(p, nullableKind, "", nullable)
	return nullable
}

// nullableOption reports an explicit `nullable: true` option on the
// property's non-relation field decorator.
func nullableOption(p *load.Property) bool {
	d := p.Decorator(load.DecoratorProperty)
	if d == nil {
		return false
	}
	v, ok := d.BoolOption("nullable")
	return ok && v
}

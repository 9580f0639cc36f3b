package dto

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/dtoforge/dtoforge/compiler/gen"
	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// filterGenerator emits the findMany filter ({entity}_filter.go): an
// equality/membership predicate per included field plus the shared
// pagination and ordering knobs.
type filterGenerator struct {
	*emitter
}

// Kind implements gen.Generator.
func (g *filterGenerator) Kind() operation.Kind { return operation.KindFilter }

// Generate implements gen.Generator.
func (g *filterGenerator) Generate(_ context.Context, rc *resolve.Context) (*gen.Artifact, error) {
	f := g.newFile()
	name := filterName(rc.Name)
	fields := rc.FieldsFor(operation.FindMany)

	f.Commentf("%s narrows %s findMany results. Nil predicates match everything.", name, rc.Name)
	f.Type().Id(name).StructFunc(func(grp *jen.Group) {
		for _, fld := range fields {
			switch {
			case fld.IsRelation():
				rel := fld.Relation
				if !rel.TargetIDValid {
					continue
				}
				if rel.Kind == resolve.ToMany {
					grp.Id(refsFieldName(fld.Name)).Add(refCode(rel, false)).Tag(jsonTag(fld.Name+"Ids", true))
				} else {
					grp.Id(refFieldName(fld.Name)).Add(refCode(rel, true)).Tag(jsonTag(fld.Name+"Id", true))
				}
			case pointable(fld.Info) && !fld.Info.Slice:
				grp.Id(exported(fld.Name)).Op("*").Add(scalarCode(fld.Info)).Tag(jsonTag(fld.Name, true))
				if fld.Info.Type.Comparable() {
					grp.Id(exported(fld.Name) + "In").Index().Add(scalarCode(fld.Info)).Tag(jsonTag(fld.Name+"In", true))
				}
			}
		}
		grp.Line()
		grp.Id("Limit").Op("*").Int().Tag(jsonTag("limit", true))
		grp.Id("Offset").Op("*").Int().Tag(jsonTag("offset", true))
		grp.Id("OrderBy").Op("*").String().Tag(jsonTag("orderBy", true))
		grp.Id("OrderDir").Op("*").Id("OrderDirection").Tag(jsonTag("orderDir", true))
	})

	return &gen.Artifact{
		Filename: fileName(rc.Name, "_filter.go"),
		Render:   f.Render,
	}, nil
}

package dto

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/dtoforge/dtoforge/compiler/gen"
	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// createGenerator emits the create DTO ({entity}_create_dto.go).
type createGenerator struct {
	*emitter
}

// Kind implements gen.Generator.
func (g *createGenerator) Kind() operation.Kind { return operation.KindCreateDTO }

// Generate implements gen.Generator.
func (g *createGenerator) Generate(_ context.Context, rc *resolve.Context) (*gen.Artifact, error) {
	f := g.newFile()
	name := createName(rc.Name)
	fields := rc.FieldsFor(operation.Create)

	f.Commentf("%s carries the fields accepted when creating a %s.", name, rc.Name)
	f.Type().Id(name).StructFunc(func(grp *jen.Group) {
		for _, fld := range fields {
			optional := fld.Nullable || fld.Optional
			switch {
			case fld.IsRelation():
				addRefField(grp, fld, optional)
			default:
				code := scalarCode(fld.Info)
				if optional && pointable(fld.Info) {
					code = jen.Op("*").Add(code)
				}
				grp.Id(exported(fld.Name)).Add(code).Tag(jsonTag(fld.Name, optional))
			}
		}
	})

	return &gen.Artifact{
		Filename: fileName(rc.Name, "_create_dto.go"),
		Render:   f.Render,
	}, nil
}

// addRefField renders a relation as a foreign-key field of the target's
// primary-key type. A to-one target without an extractable primary key
// degrades to a nested create DTO reference.
func addRefField(grp *jen.Group, fld *resolve.Field, optional bool) {
	rel := fld.Relation
	if !rel.TargetIDValid {
		grp.Id(exported(fld.Name)).Op("*").Id(createName(rel.Target.Name)).Tag(jsonTag(fld.Name, true))
		return
	}
	if rel.Kind == resolve.ToMany {
		grp.Id(refsFieldName(fld.Name)).Add(refCode(rel, false)).Tag(jsonTag(fld.Name+"Ids", true))
		return
	}
	grp.Id(refFieldName(fld.Name)).Add(refCode(rel, optional)).Tag(jsonTag(fld.Name+"Id", optional))
}

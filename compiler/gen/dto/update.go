package dto

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/dtoforge/dtoforge/compiler/gen"
	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// updateGenerator emits the update DTO ({entity}_update_dto.go). Every
// field is optional; nil means "leave unchanged".
type updateGenerator struct {
	*emitter
}

// Kind implements gen.Generator.
func (g *updateGenerator) Kind() operation.Kind { return operation.KindUpdateDTO }

// Generate implements gen.Generator.
func (g *updateGenerator) Generate(_ context.Context, rc *resolve.Context) (*gen.Artifact, error) {
	f := g.newFile()
	name := updateName(rc.Name)
	fields := rc.FieldsFor(operation.Update)

	f.Commentf("%s carries the fields accepted when updating a %s.", name, rc.Name)
	f.Commentf("All fields are optional; a nil field leaves the current value unchanged.")
	f.Type().Id(name).StructFunc(func(grp *jen.Group) {
		for _, fld := range fields {
			// The primary key identifies the row, it is not updatable.
			if rc.ID != nil && fld == rc.ID {
				continue
			}
			switch {
			case fld.IsRelation():
				addRefField(grp, fld, true)
			default:
				code := scalarCode(fld.Info)
				if pointable(fld.Info) {
					code = jen.Op("*").Add(code)
				}
				grp.Id(exported(fld.Name)).Add(code).Tag(jsonTag(fld.Name, true))
			}
		}
	})

	// Empty reports whether the update carries no change at all.
	f.Commentf("Empty reports whether the update carries no field at all.")
	f.Func().Params(jen.Id("u").Id(name)).Id("Empty").Params().Bool().BlockFunc(func(grp *jen.Group) {
		var conds []jen.Code
		for _, fld := range fields {
			if rc.ID != nil && fld == rc.ID {
				continue
			}
			conds = append(conds, jen.Id("u").Dot(updateFieldName(fld)).Op("!=").Nil())
		}
		if len(conds) == 0 {
			grp.Return(jen.True())
			return
		}
		for _, cond := range conds {
			grp.If(cond).Block(jen.Return(jen.False()))
		}
		grp.Return(jen.True())
	})

	return &gen.Artifact{
		Filename: fileName(rc.Name, "_update_dto.go"),
		Render:   f.Render,
	}, nil
}

// updateFieldName returns the struct field name used in the update DTO.
func updateFieldName(fld *resolve.Field) string {
	if fld.IsRelation() && fld.Relation.TargetIDValid {
		if fld.Relation.Kind == resolve.ToMany {
			return refsFieldName(fld.Name)
		}
		return refFieldName(fld.Name)
	}
	return exported(fld.Name)
}

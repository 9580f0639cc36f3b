package dto

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/dtoforge/dtoforge/compiler/gen"
	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// dtoGenerator emits the data DTO ({entity}_dto.go).
type dtoGenerator struct {
	*emitter
}

// Kind implements gen.Generator.
func (g *dtoGenerator) Kind() operation.Kind { return operation.KindDTO }

// Generate implements gen.Generator.
func (g *dtoGenerator) Generate(_ context.Context, rc *resolve.Context) (*gen.Artifact, error) {
	f := g.newFile()
	name := dtoName(rc.Name)
	fields := rc.FieldsFor(operation.Data)

	f.Commentf("%s is the data transfer object of the %s entity.", name, rc.Name)
	f.Type().Id(name).StructFunc(func(grp *jen.Group) {
		for _, fld := range fields {
			code := fieldCode(fld, fld.Nullable)
			grp.Id(exported(fld.Name)).Add(code).Tag(jsonTag(fld.Name, fld.Nullable))
		}
	})

	// Primary-key accessor, when the entity has one and the key is not
	// excluded from the data shape.
	if rc.HasID() && !rc.ID.Excluded(operation.Data) {
		f.Commentf("GetID returns the primary key of the DTO.")
		f.Func().Params(jen.Id("d").Id(name)).Id("GetID").Params().Add(fieldCode(rc.ID, rc.ID.Nullable)).Block(
			jen.Return(jen.Id("d").Dot(exported(rc.ID.Name))),
		)
	}

	return &gen.Artifact{
		Filename: fileName(rc.Name, "_dto.go"),
		Render:   f.Render,
	}, nil
}

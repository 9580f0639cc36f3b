package dto

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/dtoforge/dtoforge/compiler/gen"
)

// sharedGenerator emits the run-level pagination/ordering types referenced
// by every filter artifact (pagination.go).
type sharedGenerator struct {
	*emitter
}

// Generate implements gen.SharedGenerator.
func (g *sharedGenerator) Generate(_ context.Context) (*gen.Artifact, error) {
	f := g.newFile()

	f.Comment("OrderDirection is the sort direction of a findMany query.")
	f.Type().Id("OrderDirection").String()

	f.Comment("Sort directions.")
	f.Const().Defs(
		jen.Id("OrderAsc").Id("OrderDirection").Op("=").Lit("asc"),
		jen.Id("OrderDesc").Id("OrderDirection").Op("=").Lit("desc"),
	)

	f.Comment("Valid reports if the direction is one of the known values.")
	f.Func().Params(jen.Id("d").Id("OrderDirection")).Id("Valid").Params().Bool().Block(
		jen.Return(jen.Id("d").Op("==").Id("OrderAsc").Op("||").Id("d").Op("==").Id("OrderDesc")),
	)

	f.Comment("Page bounds a findMany result window.")
	f.Type().Id("Page").Struct(
		jen.Id("Limit").Int().Tag(jsonTag("limit", true)),
		jen.Id("Offset").Int().Tag(jsonTag("offset", true)),
	)

	return &gen.Artifact{
		Filename: "pagination.go",
		Render:   f.Render,
	}, nil
}

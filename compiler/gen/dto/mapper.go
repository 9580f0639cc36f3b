package dto

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/dtoforge/dtoforge/compiler/gen"
	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// mapperGenerator emits the mapping functions between the DTO shapes of an
// entity ({entity}_mapper.go). Unlike the struct emitters it renders
// through a template and runs the result through x/tools formatting, which
// also prunes imports the assignments did not end up needing.
type mapperGenerator struct {
	*emitter
}

// Kind implements gen.Generator.
func (g *mapperGenerator) Kind() operation.Kind { return operation.KindMapper }

// mapperTemplate is the skeleton of the mapper file. Assignment lines are
// precomputed; the template is structural only.
var mapperTemplate = template.Must(template.New("mapper").Parse(`// {{.Header}}

package {{.Package}}

// ToData converts the create DTO into the entity's data shape. Relation
// references are carried separately and are not mapped here.
func (in {{.CreateName}}) ToData() {{.DTOName}} {
	var out {{.DTOName}}
{{- range .CreateAssigns}}
	{{.}}
{{- end}}
	return out
}

// Apply copies every set field of the update DTO onto dst. Nil fields
// leave dst unchanged.
func (in {{.UpdateName}}) Apply(dst *{{.DTOName}}) {
{{- range .UpdateAssigns}}
	{{.}}
{{- end}}
}
`))

// mapperData is the template payload.
type mapperData struct {
	Header        string
	Package       string
	Entity        string
	DTOName       string
	CreateName    string
	UpdateName    string
	CreateAssigns []string
	UpdateAssigns []string
}

// Generate implements gen.Generator.
func (g *mapperGenerator) Generate(_ context.Context, rc *resolve.Context) (*gen.Artifact, error) {
	data := &mapperData{
		Header:     g.header,
		Package:    g.pkg,
		Entity:     rc.Name,
		DTOName:    dtoName(rc.Name),
		CreateName: createName(rc.Name),
		UpdateName: updateName(rc.Name),
	}

	dataFields := make(map[string]*resolve.Field)
	for _, fld := range rc.FieldsFor(operation.Data) {
		dataFields[fld.Name] = fld
	}
	for _, fld := range rc.FieldsFor(operation.Create) {
		target, ok := dataFields[fld.Name]
		if !ok || fld.IsRelation() {
			continue
		}
		data.CreateAssigns = append(data.CreateAssigns, createAssign(fld, target))
	}
	for _, fld := range rc.FieldsFor(operation.Update) {
		if rc.ID != nil && fld == rc.ID {
			continue
		}
		target, ok := dataFields[fld.Name]
		if !ok || fld.IsRelation() {
			continue
		}
		data.UpdateAssigns = append(data.UpdateAssigns, updateAssign(fld, target))
	}

	var buf bytes.Buffer
	if err := mapperTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("dto: render mapper for %s: %w", rc.Name, err)
	}
	filename := fileName(rc.Name, "_mapper.go")
	formatted, err := imports.Process(filename, buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("dto: format mapper for %s: %w", rc.Name, err)
	}

	return &gen.Artifact{
		Filename: filename,
		Render: func(w io.Writer) error {
			_, err := w.Write(formatted)
			return err
		},
	}, nil
}

// createAssign renders one ToData assignment, adapting between the create
// shape (pointer when optional or nullable) and the data shape (pointer
// when nullable).
func createAssign(in, out *resolve.Field) string {
	name := exported(in.Name)
	inPtr := (in.Nullable || in.Optional) && pointable(in.Info)
	outPtr := out.Nullable && pointable(out.Info)
	switch {
	case inPtr && !outPtr:
		return fmt.Sprintf("if in.%s != nil {\n\t\tout.%s = *in.%s\n\t}", name, name, name)
	case !inPtr && outPtr:
		return fmt.Sprintf("out.%s = &in.%s", name, name)
	default:
		return fmt.Sprintf("out.%s = in.%s", name, name)
	}
}

// updateAssign renders one Apply assignment. Update fields are pointers
// (or nil-able slices); only set fields touch dst.
func updateAssign(in, out *resolve.Field) string {
	name := exported(in.Name)
	if !pointable(in.Info) {
		return fmt.Sprintf("if in.%s != nil {\n\t\tdst.%s = in.%s\n\t}", name, name, name)
	}
	if out.Nullable && pointable(out.Info) {
		return fmt.Sprintf("if in.%s != nil {\n\t\tdst.%s = in.%s\n\t}", name, name, name)
	}
	return fmt.Sprintf("if in.%s != nil {\n\t\tdst.%s = *in.%s\n\t}", name, name, name)
}

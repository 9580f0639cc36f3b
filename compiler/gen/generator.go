package gen

import (
	"bytes"
	"context"
	"io"

	"github.com/dtoforge/dtoforge/compiler/resolve"
	"github.com/dtoforge/dtoforge/schema/operation"
)

// Generator emits one artifact kind for one entity. Implementations live
// in the emitter packages (compiler/gen/dto); they consume the resolved
// generation context and must be safe for concurrent use, since one
// entity's kinds run concurrently and so do sibling entities in a batch.
type Generator interface {
	// Kind identifies the artifact this generator emits.
	Kind() operation.Kind

	// Generate renders the artifact for the given resolved context.
	Generate(ctx context.Context, rc *resolve.Context) (*Artifact, error)
}

// Artifact is one rendered output file, decoupled from where it is
// written. The scheduler hands artifacts to the configured sink.
type Artifact struct {
	// Filename relative to the output directory.
	Filename string
	// Render writes the artifact body.
	Render func(io.Writer) error
}

// Bytes renders the artifact into memory.
func (a *Artifact) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sink receives rendered artifacts. The file writer is the production
// sink; tests substitute an in-memory one.
type Sink interface {
	Write(entity string, a *Artifact) error
}

// GenerateFunc adapts a function to the Generator interface.
type GenerateFunc struct {
	K operation.Kind
	F func(ctx context.Context, rc *resolve.Context) (*Artifact, error)
}

// Kind implements Generator.
func (g GenerateFunc) Kind() operation.Kind { return g.K }

// Generate implements Generator.
func (g GenerateFunc) Generate(ctx context.Context, rc *resolve.Context) (*Artifact, error) {
	return g.F(ctx, rc)
}

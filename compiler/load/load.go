package load

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Manifest is the full set of entity declarations emitted by the front end
// for one generation run, including transitively imported entities needed
// for relation resolution.
type Manifest struct {
	// Version of the manifest format.
	Version int `json:"version,omitempty"`
	// Entities in source enumeration order. The order is preserved all the
	// way into generation batching.
	Entities []*Entity `json:"entities"`
}

// NewManifest builds and validates a manifest from programmatically
// constructed entities.
func NewManifest(entities ...*Entity) (*Manifest, error) {
	m := &Manifest{Entities: entities}
	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load decodes and validates a manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("load: decode manifest: %w", err)
	}
	if err := m.init(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile decodes and validates a manifest from the given path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: open manifest: %w", err)
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load: manifest %s: %w", path, err)
	}
	return m, nil
}

// init validates the declarations and wires owner back-references. It is
// called once after decoding; the manifest is read-only afterwards.
func (m *Manifest) init() error {
	for _, e := range m.Entities {
		if e == nil {
			return fmt.Errorf("load: null entity declaration in manifest")
		}
		if e.Name == "" {
			return fmt.Errorf("load: entity with empty name (%s)", e.Pos())
		}
		if e.Base == e.Name {
			return fmt.Errorf("load: entity %s declares itself as base (%s)", e.Name, e.Pos())
		}
		names := make(map[string]struct{}, len(e.Properties))
		for _, p := range e.Properties {
			if p == nil || p.Name == "" {
				return fmt.Errorf("load: entity %s has a property with empty name (%s)", e.Name, e.Pos())
			}
			if _, dup := names[p.Name]; dup {
				return fmt.Errorf("load: entity %s declares property %s twice (%s)", e.Name, p.Name, p.Position.String())
			}
			names[p.Name] = struct{}{}
			p.entity = e
			if err := checkDecorators(e, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDecorators validates the decorator invocations of one property.
func checkDecorators(e *Entity, p *Property) error {
	var relations int
	for _, d := range p.Decorators {
		if d.Name == "" {
			return fmt.Errorf("load: entity %s property %s has an unnamed decorator (%s)", e.Name, p.Name, p.Position.String())
		}
		if !d.Shape.Valid() {
			return fmt.Errorf("load: entity %s property %s decorator %s has invalid shape", e.Name, p.Name, d.Name)
		}
		switch d.Shape {
		case ShapeThunk, ShapeIdent:
			if d.Target == "" {
				return fmt.Errorf("load: entity %s property %s decorator %s: %s shape without target", e.Name, p.Name, d.Name, d.Shape)
			}
		case ShapeNone, ShapeOptions:
			if d.Target != "" {
				return fmt.Errorf("load: entity %s property %s decorator %s: target set on %s shape", e.Name, p.Name, d.Name, d.Shape)
			}
		}
		if IsRelation(d.Name) {
			relations++
		}
	}
	if relations > 1 {
		return fmt.Errorf("load: entity %s property %s declares %d relation decorators", e.Name, p.Name, relations)
	}
	return nil
}

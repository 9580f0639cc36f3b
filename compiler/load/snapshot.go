package load

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot encodes the manifest in its binary snapshot form. Snapshots are
// written next to the output directory so watch mode can skip regeneration
// when the declarations did not change.
func (m *Manifest) Snapshot() ([]byte, error) {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("load: encode snapshot: %w", err)
	}
	return b, nil
}

// WriteSnapshot writes the binary snapshot to the given path.
func (m *Manifest) WriteSnapshot(path string) error {
	b, err := m.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("load: write snapshot %s: %w", path, err)
	}
	return nil
}

// RestoreSnapshot decodes a manifest from its binary snapshot form and
// re-runs validation, so a corrupted snapshot is rejected the same way a
// corrupted manifest is.
func RestoreSnapshot(b []byte) (*Manifest, error) {
	var m Manifest
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("load: decode snapshot: %w", err)
	}
	if err := m.init(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadSnapshot reads and decodes a binary snapshot from the given path.
func ReadSnapshot(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read snapshot %s: %w", path, err)
	}
	return RestoreSnapshot(b)
}

package gen

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtoforge/dtoforge"
)

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "out"), nil)

	a := &Artifact{
		Filename: "user_dto.go",
		Render: func(wr io.Writer) error {
			_, err := wr.Write([]byte("package dto\n"))
			return err
		},
	}
	require.NoError(t, w.Write("User", a))

	body, err := os.ReadFile(filepath.Join(dir, "out", "user_dto.go"))
	require.NoError(t, err)
	assert.Equal(t, "package dto\n", string(body))

	m := w.Metrics()
	assert.Equal(t, 1, m.FilesWritten)
	assert.Equal(t, int64(len("package dto\n")), m.TotalBytes)
}

func TestWriterRenderFailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, nil)

	a := &Artifact{
		Filename: "broken.go",
		Render: func(wr io.Writer) error {
			wr.Write([]byte("partial"))
			return errors.New("render failed")
		},
	}
	err := w.Write("User", a)
	require.Error(t, err)
	assert.False(t, dtoforge.IsFile(err))

	// Rendering happens in memory; the failed artifact never touches disk.
	_, statErr := os.Stat(filepath.Join(dir, "broken.go"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Zero(t, w.Metrics().FilesWritten)
}

func TestWriterMkdirFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A regular file where the output directory should be.
	blocked := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	w := NewWriter(blocked, nil)

	a := &Artifact{
		Filename: "nested/user_dto.go",
		Render: func(wr io.Writer) error {
			_, err := wr.Write([]byte("package dto\n"))
			return err
		},
	}
	err := w.Write("User", a)
	require.Error(t, err)
	assert.True(t, dtoforge.IsFile(err))
}

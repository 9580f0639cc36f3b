package gen

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dtoforge/dtoforge"
)

// Writer is the production artifact sink: it renders artifacts into the
// output directory, creating directories as needed. I/O failures come back
// as FileError so the scheduler aggregates them exactly like resolution
// errors.
type Writer struct {
	outDir string
	logger *zap.Logger

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation output volume.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
}

// NewWriter creates a writer rooted at outDir.
func NewWriter(outDir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{outDir: outDir, logger: logger}
}

// Write implements Sink. The artifact is rendered to memory first so a
// failed render never leaves a truncated file behind.
func (w *Writer) Write(entity string, a *Artifact) error {
	var buf bytes.Buffer
	if err := a.Render(&buf); err != nil {
		return err
	}
	path := filepath.Join(w.outDir, a.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dtoforge.NewFileError("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return dtoforge.NewFileError("write", path, err)
	}
	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(buf.Len())
	w.mu.Unlock()
	w.logger.Debug("artifact written",
		zap.String("entity", entity),
		zap.String("path", path),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}

// Metrics returns a snapshot of the writer metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

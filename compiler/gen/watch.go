package gen

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dtoforge/dtoforge/compiler/load"
)

// DefaultDebounce coalesces editor write bursts into one regeneration.
const DefaultDebounce = 250 * time.Millisecond

// Watcher re-runs generation whenever the manifest file changes. Each
// cycle calls the run function with a fresh context; a failing run is
// logged and watching continues.
//
// Before running, the freshly decoded manifest's snapshot is compared
// against the snapshot of the last successful run, and regeneration is
// skipped when the declarations did not change (touched files, reordered
// JSON whitespace). With a snapshot path configured the baseline survives
// watcher restarts.
type Watcher struct {
	manifest     string
	run          func(ctx context.Context) error
	debounce     time.Duration
	logger       *zap.Logger
	snapshotPath string
	lastSnap     []byte
}

// NewWatcher creates a watcher over the manifest path.
func NewWatcher(manifest string, run func(ctx context.Context) error, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		manifest: manifest,
		run:      run,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// WithDebounce sets the debounce interval.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// WithSnapshot sets the path the declaration snapshot is persisted at
// after each successful run, next to the generated output.
func (w *Watcher) WithSnapshot(path string) *Watcher {
	w.snapshotPath = path
	return w
}

// Watch blocks until the context is canceled, regenerating on each change
// of the manifest file. The parent directory is watched because editors
// commonly replace the file by rename, which drops a watch on the file
// itself.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	dir := filepath.Dir(w.manifest)
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.prime()
	w.logger.Info("watching manifest", zap.String("path", w.manifest))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.manifest) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timerCh:
			timer = nil
			timerCh = nil
			m, snap, changed := w.changed()
			if !changed {
				w.logger.Info("declarations unchanged, skipping regeneration")
				continue
			}
			w.logger.Info("manifest changed, regenerating")
			if err := w.run(ctx); err != nil {
				// The next save gets another full attempt; the baseline
				// is only advanced past a successful run.
				w.logger.Error("regeneration failed", zap.Error(err))
				continue
			}
			w.commit(m, snap)
		}
	}
}

// prime restores the baseline snapshot from disk, so a restarted watcher
// does not regenerate for declarations the previous session already built.
func (w *Watcher) prime() {
	if w.snapshotPath == "" {
		return
	}
	m, err := load.ReadSnapshot(w.snapshotPath)
	if err != nil {
		return
	}
	if snap, err := m.Snapshot(); err == nil {
		w.lastSnap = snap
	}
}

// changed decodes the manifest and reports whether its declarations
// differ from the baseline. A manifest that cannot be decoded counts as
// changed so the run surfaces the load error.
func (w *Watcher) changed() (*load.Manifest, []byte, bool) {
	m, err := load.LoadFile(w.manifest)
	if err != nil {
		return nil, nil, true
	}
	snap, err := m.Snapshot()
	if err != nil {
		return nil, nil, true
	}
	if w.lastSnap != nil && bytes.Equal(snap, w.lastSnap) {
		return m, snap, false
	}
	return m, snap, true
}

// commit advances the baseline after a successful run and persists it
// when a snapshot path is configured.
func (w *Watcher) commit(m *load.Manifest, snap []byte) {
	if snap == nil {
		return
	}
	w.lastSnap = snap
	if w.snapshotPath == "" || m == nil {
		return
	}
	if err := m.WriteSnapshot(w.snapshotPath); err != nil {
		w.logger.Warn("snapshot write failed", zap.Error(err))
	}
}

package gen

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtoforge/dtoforge/compiler/load"
)

const (
	userManifestJSON = `{"version":1,"entities":[{"name":"User","properties":[{"name":"id","type":"string"}]}]}`
	postManifestJSON = `{"version":1,"entities":[{"name":"Post","properties":[{"name":"id","type":"string"}]}]}`
)

func TestWatcherRegeneratesOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "entities.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"version":1,"entities":[]}`), 0o644))

	ran := make(chan struct{}, 1)
	w := NewWatcher(manifest, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, nil).WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(manifest, []byte(`{"version":2,"entities":[]}`), 0o644))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not regenerate after manifest write")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

// waitForRuns blocks until the counter reaches want or the deadline hits.
func waitForRuns(t *testing.T, runs *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if runs.Load() >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("watcher ran %d time(s), want %d", runs.Load(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherSkipsUnchangedDeclarations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "entities.json")
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))

	var runs atomic.Int32
	w := NewWatcher(manifest, func(context.Context) error {
		runs.Add(1)
		return nil
	}, nil).WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	// First event has no baseline yet, so it regenerates.
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))
	waitForRuns(t, &runs, 1)

	// Re-saving identical declarations is skipped.
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	// A real declaration change regenerates again.
	require.NoError(t, os.WriteFile(manifest, []byte(postManifestJSON), 0o644))
	waitForRuns(t, &runs, 2)
}

func TestWatcherSnapshotBaseline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "entities.json")
	snapshot := filepath.Join(dir, ".manifest.snap")
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))

	// A previous session already built these declarations.
	m, err := load.LoadFile(manifest)
	require.NoError(t, err)
	require.NoError(t, m.WriteSnapshot(snapshot))

	var runs atomic.Int32
	w := NewWatcher(manifest, func(context.Context) error {
		runs.Add(1)
		return nil
	}, nil).WithDebounce(20 * time.Millisecond).WithSnapshot(snapshot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	// The persisted baseline covers the unchanged declarations.
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	// A change regenerates and advances the persisted snapshot.
	require.NoError(t, os.WriteFile(manifest, []byte(postManifestJSON), 0o644))
	waitForRuns(t, &runs, 1)

	deadline := time.After(5 * time.Second)
	for {
		got, err := load.ReadSnapshot(snapshot)
		if err == nil && len(got.Entities) == 1 && got.Entities[0].Name == "Post" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("snapshot was not advanced after regeneration")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherFailedRunKeepsBaseline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "entities.json")
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))

	var runs atomic.Int32
	fail := atomic.Bool{}
	fail.Store(true)
	w := NewWatcher(manifest, func(context.Context) error {
		runs.Add(1)
		if fail.Load() {
			return assert.AnError
		}
		return nil
	}, nil).WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	time.Sleep(100 * time.Millisecond)

	// The failed run does not advance the baseline, so re-saving the same
	// declarations gets another attempt.
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))
	waitForRuns(t, &runs, 1)
	fail.Store(false)
	require.NoError(t, os.WriteFile(manifest, []byte(userManifestJSON), 0o644))
	waitForRuns(t, &runs, 2)
}

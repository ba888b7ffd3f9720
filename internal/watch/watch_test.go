package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pie/internal/watch"

	"github.com/stretchr/testify/require"
)

func TestWatcher_BatchesRapidWritesToOneChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	w, err := watch.New([]string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("v"+string(rune('1'+i))), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case batch := <-w.Changes():
		require.Contains(t, batch, path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a debounced change batch")
	}
}

func TestWatcher_CloseStopsDelivery(t *testing.T) {
	dir := t.TempDir()
	w, err := watch.New([]string{dir}, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(dir, "g.txt")
	require.NoError(t, os.WriteFile(path, []byte("v"), 0o644))

	select {
	case _, ok := <-w.Changes():
		require.False(t, ok, "channel should be empty and never receive after Close")
	case <-time.After(100 * time.Millisecond):
		// no batch delivered, as expected
	}
}

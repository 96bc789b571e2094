package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerNeverBlocks(t *testing.T) {
	r := &Runner{rebuild: make(chan struct{}, 1)}

	// Repeated triggers coalesce into the single buffered slot.
	r.trigger()
	r.trigger()
	r.trigger()

	select {
	case <-r.rebuild:
	default:
		t.Fatal("expected a pending rebuild signal")
	}
	select {
	case <-r.rebuild:
		t.Fatal("expected triggers to coalesce")
	default:
	}
}

func TestWatchTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guide", "deep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "guide", "page.md"), []byte("x"), 0o644))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, watchTree(watcher, root))

	list := watcher.WatchList()
	assert.Contains(t, list, root)
	assert.Contains(t, list, filepath.Join(root, "guide"))
	assert.Contains(t, list, filepath.Join(root, "guide", "deep"))
	assert.NotContains(t, list, filepath.Join(root, ".git"))
	assert.NotContains(t, list, filepath.Join(root, ".git", "objects"))
}

func TestWatchTreeMissingRoot(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	assert.NoError(t, watchTree(watcher, filepath.Join(t.TempDir(), "gone")))
}

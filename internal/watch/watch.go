package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay used to coalesce a burst of filesystem
// events into a single batch, an order of magnitude suited to
// interactive use.
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches one or more root paths (recursing into directories) and
// delivers batches of changed file paths on Changes.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}

	changes chan []string
	errors  chan error

	mu       sync.Mutex
	debounce time.Duration
	pending  map[string]struct{}
	timer    *time.Timer
	closed   bool
}

// New creates a Watcher rooted at every path in roots. A root that is a
// directory is watched recursively; a root that is a regular file is
// watched directly, through its parent directory (fsnotify only ever
// watches directories).
func New(roots []string, debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fs:       fs,
		done:     make(chan struct{}),
		changes:  make(chan []string, 16),
		errors:   make(chan error, 16),
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}

	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fs.Close()
			return nil, err
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return w.fs.Add(filepath.Dir(root))
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return err
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[ev.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for p := range w.pending {
		batch = append(batch, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	select {
	case w.changes <- batch:
	case <-w.done:
	}
}

// Changes delivers a batch of changed paths each time the debounce window
// closes with at least one pending change.
func (w *Watcher) Changes() <-chan []string { return w.changes }

// Errors delivers fsnotify errors encountered while watching.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops watching and releases the underlying fsnotify watcher. Any
// pending, not-yet-debounced change is dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}

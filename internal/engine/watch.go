package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/sci/internal/debug"
)

// Watcher re-extracts files as they change on disk. Events are
// debounced per configuration so editor save bursts produce one
// extraction pass.
type Watcher struct {
	engine   *Engine
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]bool
	onFlush func(changed []string)
}

// NewWatcher builds a watcher over the engine's project root. Call Run
// to start delivering events and Close to shut down.
func (e *Engine) NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root := e.cfg.Project.Root
	if root == "" {
		root = "."
	}
	debounceMs := e.cfg.Watch.DebounceMs
	if debounceMs <= 0 {
		debounceMs = 50
	}

	w := &Watcher{
		engine:   e,
		fsw:      fsw,
		root:     root,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		pending:  make(map[string]bool),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive registers root and every non-excluded subdirectory.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr == nil && rel != "." && w.engine.excluded(filepath.ToSlash(rel), true) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run consumes filesystem events until the context ends or the watcher
// closes. It blocks; callers usually run it in a goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			debug.LogEngine("watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.engine.Forget(path)
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				debug.LogEngine("watch add %s: %v", path, err)
			}
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if _, known := w.engine.registry.LanguageForExt(filepath.Ext(path)); !known {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(ctx) })
}

// flush re-extracts every pending file in one batch.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]bool)
	callback := w.onFlush
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	changed := make([]string, 0, len(batch))
	for path := range batch {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.engine.AnalyzeFile(ctx, path); err != nil {
			debug.LogEngine("re-extraction failed for %s: %v", path, err)
			continue
		}
		changed = append(changed, path)
	}
	debug.LogEngine("re-extracted %d changed files", len(changed))

	if callback != nil {
		callback(changed)
	}
}

// SetOnFlush registers a callback invoked after each debounced batch,
// used by tests to synchronize with re-extraction.
func (w *Watcher) SetOnFlush(callback func(changed []string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onFlush = callback
}

// Close stops event delivery and any pending debounce timer.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

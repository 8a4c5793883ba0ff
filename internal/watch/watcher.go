package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xmazu/envsync/internal/log"
)

const DefaultDebounce = 500 * time.Millisecond

// FileWatcher reports changes to a set of files. It watches their parent
// directories so files that are created later, or replaced by a rename, are
// still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		watcher:  fsw,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

func (w *FileWatcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Run blocks until ctx is done, calling fn with the changed files once
// events have been quiet for the debounce interval. An error from fn stops
// the watcher and is returned.
func (w *FileWatcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string) error) error {
	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.watched(event.Name) {
				continue
			}
			log.Tracef("event %s", event)
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch error: %v", err)
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			sort.Strings(changed)
			clear(pending)
			if err := fn(ctx, changed); err != nil {
				return err
			}
		}
	}
}

func (w *FileWatcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}

func (w *FileWatcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

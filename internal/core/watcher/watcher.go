package watcher

import (
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"declschema/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
)

// Filter selects files below a watched directory by their slash-separated
// path relative to that directory. *util.PathMatcher implements it.
type Filter interface {
	Match(rel string) bool
	Excluded(rel string) bool
}

// Watcher reports changed source files in debounced batches. Files whose
// content hash did not change since the last report are dropped, so editor
// touches and identical rewrites do not trigger re-extraction.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	filter     Filter
	onChange   func([]string)
	callbackMu sync.Mutex

	// roots are watched directories; files are individually watched inputs.
	roots   []string
	files   map[string]bool
	rootsMu sync.RWMutex

	pending   map[string]time.Time
	hashes    map[string][sha256.Size]byte
	pendingMu sync.Mutex
	timer     *time.Timer
}

func NewWatcher(debounce time.Duration, filter Filter, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		filter:    filter,
		onChange:  onChange,
		files:     make(map[string]bool),
		pending:   make(map[string]time.Time),
		hashes:    make(map[string][sha256.Size]byte),
	}, nil
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch starts watching paths. Directories are watched recursively and
// filtered; a file path is watched through its parent directory and is the
// only file reported from it.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		path = filepath.Clean(path)
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			w.rootsMu.Lock()
			w.files[path] = true
			w.rootsMu.Unlock()
			w.rememberHash(path)
			if err := w.fsWatcher.Add(filepath.Dir(path)); err != nil {
				return err
			}
			continue
		}

		w.rootsMu.Lock()
		w.roots = append(w.roots, path)
		w.rootsMu.Unlock()
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if w.accepts(path) {
			w.rememberHash(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if w.underRoot(event.Name) && !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if !w.accepts(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[filepath.Clean(path)] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		if w.contentChangedLocked(path) {
			paths = append(paths, path)
		}
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		sort.Strings(paths)
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

// contentChangedLocked updates the stored hash of path and reports whether it
// differs from the previous one. Unreadable (removed) files always count as
// changed. Callers hold pendingMu.
func (w *Watcher) contentChangedLocked(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		delete(w.hashes, path)
		return true
	}
	sum := sha256.Sum256(data)
	if prev, ok := w.hashes[path]; ok && prev == sum {
		return false
	}
	w.hashes[path] = sum
	return true
}

func (w *Watcher) rememberHash(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	w.pendingMu.Lock()
	w.hashes[filepath.Clean(path)] = sha256.Sum256(data)
	w.pendingMu.Unlock()
}

// accepts reports whether a file event should be reported.
func (w *Watcher) accepts(path string) bool {
	path = filepath.Clean(path)
	w.rootsMu.RLock()
	defer w.rootsMu.RUnlock()

	if w.files[path] {
		return true
	}
	for _, root := range w.roots {
		rel, ok := relativeTo(root, path)
		if !ok {
			continue
		}
		if w.filter == nil || w.filter.Match(filepath.ToSlash(rel)) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	if w.filter == nil {
		return false
	}
	w.rootsMu.RLock()
	defer w.rootsMu.RUnlock()
	for _, root := range w.roots {
		if rel, ok := relativeTo(root, path); ok && rel != "." {
			return w.filter.Excluded(filepath.ToSlash(rel))
		}
	}
	return false
}

func (w *Watcher) underRoot(path string) bool {
	w.rootsMu.RLock()
	defer w.rootsMu.RUnlock()
	for _, root := range w.roots {
		if _, ok := relativeTo(root, path); ok {
			return true
		}
	}
	return false
}

func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || (len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if !w.accepts(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}

package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of writes to one descriptor file.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Debounce time.Duration

	// OnReload is called after a file was reloaded or removed. err is the
	// load error, if any. It must not call Stop.
	OnReload func(path string, err error)
}

// Watcher reloads descriptor files under a directory when they change.
// Changed files are re-registered under their component name, removed
// files drop their components, and the resolver cache is purged.
type Watcher struct {
	watcher  *fsnotify.Watcher
	catalog  *Catalog
	loader   *Loader
	resolver *Resolver
	logger   *slog.Logger
	options  WatchOptions
	root     string

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher. resolver may be nil.
func NewWatcher(cat *Catalog, loader *Loader, resolver *Resolver, options WatchOptions, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:        fw,
		catalog:        cat,
		loader:         loader,
		resolver:       resolver,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches root and its subdirectories in the background.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.root = root
	w.mu.Unlock()

	if err := w.addTree(root); err != nil {
		return err
	}

	w.logger.Info("descriptor watcher started", "root", root)
	go w.eventLoop()
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(w.root, path); rel != "." && matchAny(w.loader.options.Exclude, filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("descriptor watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("descriptor watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}
	if !w.loader.Accepts(w.root, path) {
		return
	}

	w.logger.Debug("descriptor file event", "op", event.Op.String(), "file", path)
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounceReload(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancelReload(path)
		w.remove(path)
	}
}

func (w *Watcher) debounceReload(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}
	w.debounceTimers[path] = time.AfterFunc(w.options.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()
		w.reload(path)
	})
}

func (w *Watcher) cancelReload(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
}

// reload re-registers one file. A file that no longer loads keeps its
// previous descriptor registered.
func (w *Watcher) reload(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	d, err := w.loader.LoadFile(path)
	if err != nil {
		w.logger.Warn("descriptor reload failed", "file", path, "error", err)
		w.notify(path, err)
		return
	}

	name := ComponentName(path)
	replaced, err := w.catalog.Put(name, path, d)
	if err != nil {
		w.logger.Warn("descriptor reload rejected", "file", path, "error", err)
		w.notify(path, err)
		return
	}
	w.purge()
	w.logger.Info("descriptor reloaded", "component", name, "file", path, "replaced", replaced)
	w.notify(path, nil)
}

func (w *Watcher) remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	removed := w.catalog.RemoveSource(path)
	if len(removed) == 0 {
		return
	}
	w.purge()
	w.logger.Info("descriptor removed", "components", removed, "file", path)
	w.notify(path, nil)
}

func (w *Watcher) purge() {
	if w.resolver != nil {
		w.resolver.Purge()
	}
}

func (w *Watcher) notify(path string, err error) {
	if w.options.OnReload != nil {
		w.options.OnReload(path, err)
	}
}

// Pending returns the number of scheduled reloads.
func (w *Watcher) Pending() int {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	return len(w.debounceTimers)
}

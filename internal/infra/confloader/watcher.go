package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies callbacks when a watched config file changes on disk.
// The server uses it to hot-reload the log level without a restart.
type Watcher struct {
	fs        *fsnotify.Watcher
	mu        sync.RWMutex
	callbacks []func(string)
	done      chan struct{}
	logger    *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher returns a Watcher with no paths registered yet.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:     fs,
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch registers path. The enclosing directory is watched rather than
// the file itself; editors that save via rename-and-replace would
// otherwise detach the watch.
func (w *Watcher) Watch(path string) error {
	dir := filepath.Dir(path)
	if err := w.fs.Add(dir); err != nil {
		w.logger.Error("config watch failed", "path", dir, "error", err)
		return err
	}
	w.logger.Debug("watching config directory", "path", dir, "file", filepath.Base(path))
	return nil
}

// OnChange registers a callback invoked with the path of each changed
// file.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start consumes filesystem events until Stop is called. Write and
// create events fire the callbacks; other operations (chmod, remove) are
// ignored.
func (w *Watcher) Start() {
	w.logger.Info("config watcher started")

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("config file changed", "file", event.Name, "op", event.Op.String())
				w.notify(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync runs Start in its own goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends the event loop and releases the filesystem watch.
func (w *Watcher) Stop() error {
	close(w.done)
	if err := w.fs.Close(); err != nil {
		w.logger.Error("config watcher close failed", "error", err)
		return err
	}
	w.logger.Info("config watcher stopped")
	return nil
}

func (w *Watcher) notify(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}

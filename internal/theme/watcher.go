package theme

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a theme file for changes and triggers hot-reload.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	theme    *Theme
	onChange func(*Theme)
	done     chan struct{}
	stopped  chan struct{}
	running  bool
}

// NewWatcher creates a new theme watcher.
func NewWatcher(theme *Theme, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:  logger,
		watcher: fw,
		theme:   theme,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback to invoke with the reloaded theme.
func (w *Watcher) SetChangeCallback(callback func(*Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// UpdateTheme switches to watching a different theme in the same directory.
func (w *Watcher) UpdateTheme(theme *Theme) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.theme = theme
}

// Start begins watching the theme file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	theme := w.theme
	w.mu.Unlock()

	if theme == nil || theme.Path == "" {
		w.logger.Debug("not watching bundled theme")
		return nil
	}

	// Watch the directory containing the file; editors often replace files on save
	if err := w.watcher.Add(filepath.Dir(theme.Path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	go w.watch()

	w.logger.Debug("theme watcher started", "path", theme.Path)
	return nil
}

func (w *Watcher) watch() {
	defer close(w.stopped)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.handle(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(name string) {
	w.mu.Lock()
	current := w.theme
	callback := w.onChange
	w.mu.Unlock()

	if current == nil || current.Path == "" || filepath.Base(name) != filepath.Base(current.Path) {
		return
	}

	next := *current
	changed, err := next.Reload()
	if err != nil {
		w.logger.Warn("failed to reload theme", "path", current.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	w.mu.Lock()
	w.theme = &next
	w.mu.Unlock()

	w.logger.Info("theme file changed, reloading", "path", current.Path)
	if callback != nil {
		callback(&next)
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	<-w.stopped
	w.logger.Debug("theme watcher stopped")
	return w.watcher.Close()
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

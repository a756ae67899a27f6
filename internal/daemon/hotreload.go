package daemon

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/toasty/internal/config"
)

// reloadDebounce collapses the burst of events an editor produces on save.
const reloadDebounce = 150 * time.Millisecond

// ConfigWatcher watches the daemon config file and reloads it on change.
// A config that fails to parse or validate is reported and the current one
// is kept.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	configPath    string
	currentConfig *config.Config

	onReload func(cfg *config.Config)
	onError  func(err error)

	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
	running bool
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = config.ConfigPath()
	}
	return &ConfigWatcher{
		logger:     logger,
		configPath: path,
	}
}

// SetReloadCallback sets the callback invoked with each valid new config.
func (w *ConfigWatcher) SetReloadCallback(callback func(cfg *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed config is rejected.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start begins watching. The directory is watched so the file may be
// created later or replaced by an atomic save.
func (w *ConfigWatcher) Start(initial *config.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.configPath)); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.currentConfig = initial
	w.done = make(chan struct{})
	w.running = true

	go w.watch(watcher, w.done)

	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// Stop stops watching.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
	}
	watcher := w.watcher
	w.mu.Unlock()

	_ = watcher.Close()
	w.logger.Debug("config watcher stopped")
}

// Current returns the last valid configuration.
func (w *ConfigWatcher) Current() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

func (w *ConfigWatcher) watch(watcher *fsnotify.Watcher, done chan struct{}) {
	name := filepath.Base(w.configPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-done:
			return
		}
	}
}

func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	running := w.running
	onReload, onError := w.onReload, w.onError
	w.mu.RUnlock()

	if !running {
		return
	}

	w.logger.Debug("config file changed", "path", w.configPath)

	cfg, err := config.Load(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.currentConfig = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully")
	if onReload != nil {
		onReload(cfg)
	}
}

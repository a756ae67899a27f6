package theme

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Loader handles loading themes with hot-reload support.
type Loader struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	themesDir   string
	currentName string
	theme       *Theme
	watcher     *Watcher
	onChange    func(*Theme)
}

// NewLoader creates a new theme loader reading user themes from themesDir.
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		logger:    logger,
		themesDir: themesDir,
		theme:     NewDefaultTheme(),
	}
}

// SetChangeCallback sets the callback invoked after a theme is (re)loaded.
func (l *Loader) SetChangeCallback(callback func(*Theme)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = callback
}

// LoadTheme loads a theme by name.
// Theme resolution order:
//  1. User themes directory (~/.config/toasty/themes/)
//  2. Embedded/bundled themes
//
// This allows users to override bundled themes by placing a file with the same name
// in their themes directory. Unknown names fall back to the default theme.
func (l *Loader) LoadTheme(name string) *Theme {
	if name == "" {
		name = DefaultThemeName
	}

	t := l.resolve(name)

	l.mu.Lock()
	l.theme = t
	l.currentName = name
	callback := l.onChange
	if l.watcher != nil {
		l.watcher.UpdateTheme(t)
	}
	l.mu.Unlock()

	if callback != nil {
		callback(t)
	}
	return t
}

func (l *Loader) resolve(name string) *Theme {
	if l.themesDir != "" {
		themePath := filepath.Join(l.themesDir, name+".yaml")
		if _, err := os.Stat(themePath); err == nil {
			t, err := NewTheme(name, themePath)
			if err == nil {
				l.logger.Info("loaded user theme", "name", name, "path", themePath)
				return t
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if IsEmbeddedTheme(name) {
		t, err := newBundledTheme(name)
		if err == nil {
			l.logger.Info("loaded bundled theme", "name", name)
			return t
		}
		l.logger.Warn("failed to load bundled theme", "theme", name, "error", err)
	} else {
		l.logger.Warn("theme not found, using default", "theme", name)
	}

	return NewDefaultTheme()
}

// Current returns the currently loaded theme.
func (l *Loader) Current() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// Reload reloads the current theme by name.
func (l *Loader) Reload() *Theme {
	l.mu.RLock()
	name := l.currentName
	l.mu.RUnlock()
	return l.LoadTheme(name)
}

// StartHotReload starts watching the current theme file for changes.
// Bundled themes are not watched.
func (l *Loader) StartHotReload() {
	l.StopHotReload()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.theme == nil || l.theme.Path == "" {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}

	w, err := NewWatcher(l.theme, l.logger)
	if err != nil {
		l.logger.Warn("failed to create theme watcher", "error", err)
		return
	}
	w.SetChangeCallback(func(t *Theme) {
		l.mu.Lock()
		l.theme = t
		callback := l.onChange
		l.mu.Unlock()
		l.logger.Info("hot-reloaded theme", "name", t.Name)
		if callback != nil {
			callback(t)
		}
	})

	if err := w.Start(); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		return
	}
	l.watcher = w
}

// StopHotReload stops watching the theme for changes.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	// Stopping waits for the watch loop, which may be inside the change callback
	if w != nil {
		_ = w.Stop()
	}
}

package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/notify"
)

// Manager maps notification types to sounds and plays them.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	enabled bool
	sounds  map[notify.Type]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewManager creates an audio manager from the audio section of cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		player: NewPlayer(logger),
		sounds: make(map[notify.Type]string),
	}
	m.apply(cfg)
	return m
}

// apply loads the sound table and volume from cfg. Missing files are
// skipped with a warning.
func (m *Manager) apply(cfg *config.Config) {
	sounds := make(map[notify.Type]string)
	enabled := false
	if cfg != nil {
		enabled = cfg.Audio.Enabled
		m.player.SetVolume(float64(cfg.Audio.Volume) / 100)
		for _, t := range notify.Types() {
			path := cfg.SoundForType(string(t))
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				m.logger.Warn("sound file not found", "type", t, "path", path)
				continue
			}
			sounds[t] = path
		}
	}

	m.mu.Lock()
	m.enabled = enabled
	m.sounds = sounds
	m.mu.Unlock()
}

// Sound returns the sound file configured for t.
func (m *Manager) Sound(t notify.Type) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[t]
	return path, ok
}

// Enabled reports whether playback is switched on.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Start preloads the configured sounds and watches them for edits.
func (m *Manager) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.watcher = w
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.preloadAndWatch()
	go m.watch(w, m.done)

	m.logger.Info("audio manager started", "sounds", len(m.snapshot()))
	return nil
}

func (m *Manager) snapshot() map[notify.Type]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[notify.Type]string, len(m.sounds))
	for t, p := range m.sounds {
		out[t] = p
	}
	return out
}

func (m *Manager) preloadAndWatch() {
	m.mu.RLock()
	enabled, w := m.enabled, m.watcher
	m.mu.RUnlock()

	for _, path := range m.snapshot() {
		if enabled {
			if err := m.player.Preload(path); err != nil {
				m.logger.Warn("failed to preload sound", "path", path, "error", err)
			}
		}
		if w != nil {
			if err := w.Add(filepath.Dir(path)); err != nil {
				m.logger.Debug("failed to watch sound", "path", path, "error", err)
			}
		}
	}
}

func (m *Manager) watch(w *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				m.logger.Debug("sound file changed, invalidating cache", "path", event.Name)
				m.player.Invalidate(event.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.logger.Warn("sound watcher error", "error", err)
		case <-done:
			return
		}
	}
}

// Stop stops watching and releases the speaker.
func (m *Manager) Stop() {
	m.mu.Lock()
	w, done := m.watcher, m.done
	m.watcher, m.done = nil, nil
	m.mu.Unlock()

	if w != nil {
		close(done)
		_ = w.Close()
	}
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayForType plays the sound configured for t. It is a no-op when audio is
// disabled or no sound is set.
func (m *Manager) PlayForType(t notify.Type) error {
	if !m.Enabled() {
		return nil
	}
	path, ok := m.Sound(t)
	if !ok {
		m.logger.Debug("no sound configured for type", "type", t)
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig reloads the sound table after a config change.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.player.ClearCache()
	m.apply(cfg)
	m.preloadAndWatch()
	m.logger.Debug("audio manager config updated")
}

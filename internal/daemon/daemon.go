package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/display"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/notify"
	"github.com/jmylchreest/toasty/internal/store"
	"github.com/jmylchreest/toasty/internal/theme"
)

// Options configures a Daemon.
type Options struct {
	ConfigPath  string // Empty uses config.ConfigPath
	HistoryPath string // Empty uses config.HistoryPath; "-" disables persistence
	ThemesDir   string // Empty uses config.ThemesDir
	Version     string
	Logger      *slog.Logger

	// Clock drives timers and deduplication. Nil uses the system clock.
	Clock notify.Clock

	NoDBus      bool
	NoAudio     bool
	NoHotReload bool
}

// Daemon owns one notification manager and everything around it.
type Daemon struct {
	opts   Options
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *config.Config

	themes   *theme.Loader
	renderer *display.Renderer
	surface  *display.Surface
	manager  *notify.Manager
	history  *store.Store
	audio    *audio.Manager
	server   *dbus.Server
	watcher  *ConfigWatcher
	notifier *InternalNotifier
}

// New loads configuration and builds the daemon. Nothing is started until
// Start or Run.
func New(opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	d := &Daemon{opts: opts, logger: logger, cfg: cfg}

	themesDir := opts.ThemesDir
	if themesDir == "" {
		themesDir = config.ThemesDir()
	}
	d.themes = theme.NewLoader(themesDir, logger)
	current := d.themes.LoadTheme(cfg.Theme.Name)

	d.renderer = display.NewRenderer(current.Palette, cfg.Display.Width)
	d.surface = display.NewSurface(d.renderer, cfg.Display.CellHeight)

	d.manager = notify.NewManager(d.surface, d.surface, SettingsFrom(cfg), logger)
	if opts.Clock != nil {
		d.manager.SetClock(opts.Clock)
	}
	d.manager.Deduplicator().Configure(cfg.Dedup.Enabled, cfg.Dedup.Window.Duration(), RulesFrom(cfg))

	d.history = d.openHistory(cfg)

	if !opts.NoAudio {
		d.audio = audio.NewManager(cfg, logger)
	}
	if !opts.NoDBus {
		d.server = dbus.NewServer(d.manager, logger)
		info := dbus.DefaultServerInfo()
		if opts.Version != "" {
			info.Version = opts.Version
		}
		d.server.SetServerInfo(info)
	}

	d.notifier = NewInternalNotifier(func(t notify.Type, message string) {
		d.manager.Show(notify.Options{Type: t, Message: message})
	}, logger)

	d.themes.SetChangeCallback(func(t *theme.Theme) {
		d.surface.SetTheme(t)
		d.logger.Info("theme applied", "name", t.Name)
	})

	d.manager.SetShowCallback(d.onShow)
	d.manager.SetCloseCallback(d.onClose)
	d.manager.SetSuppressCallback(d.onSuppress)
	d.manager.SetConfirmCallback(d.onConfirm)

	return d, nil
}

func (d *Daemon) openHistory(cfg *config.Config) *store.Store {
	path := d.opts.HistoryPath
	if path == "-" {
		return store.NewStore(nil, cfg.Behavior.HistoryLength)
	}
	if path == "" {
		var err error
		if path, err = config.HistoryPath(); err != nil {
			d.logger.Warn("history disabled", "error", err)
			return store.NewStore(nil, cfg.Behavior.HistoryLength)
		}
	}

	persistence, err := store.NewJSONLPersistence(path)
	if err != nil {
		d.logger.Warn("history persistence disabled", "path", path, "error", err)
		return store.NewStore(nil, cfg.Behavior.HistoryLength)
	}

	s := store.NewStore(persistence, cfg.Behavior.HistoryLength)
	if err := s.Hydrate(); err != nil {
		d.logger.Warn("failed to hydrate history", "path", path, "error", err)
	}
	d.logger.Info("history store initialized", "path", path, "count", s.Count())
	return s
}

// SettingsFrom converts the config into manager settings.
func SettingsFrom(cfg *config.Config) notify.Settings {
	return notify.Settings{
		Offset:       cfg.Display.Offset,
		Gap:          cfg.Display.Gap,
		Duration:     cfg.Timeouts.Default.Duration(),
		PauseOnHover: cfg.Behavior.PauseOnHover,
	}
}

// RulesFrom converts the configured keyword table into dedup rules. An empty
// table yields the stock rules.
func RulesFrom(cfg *config.Config) []notify.CategoryRule {
	if len(cfg.Dedup.Categories) == 0 {
		return notify.DefaultCategoryRules()
	}
	rules := make([]notify.CategoryRule, len(cfg.Dedup.Categories))
	for i, c := range cfg.Dedup.Categories {
		rules[i] = notify.CategoryRule{Keyword: c.Keyword, Category: c.Category}
	}
	return rules
}

// Manager returns the notification manager.
func (d *Daemon) Manager() *notify.Manager { return d.manager }

// History returns the event history.
func (d *Daemon) History() *store.Store { return d.history }

// Surface returns the display surface the manager renders to.
func (d *Daemon) Surface() *display.Surface { return d.surface }

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Model returns a fresh terminal model driving the manager.
func (d *Daemon) Model() display.Model {
	cfg := d.Config()
	return display.NewModel(d.manager, d.renderer, cfg.Display.CellHeight, cfg.Display.MaxVisible)
}

// Start brings up the D-Bus service, audio and the watchers. A missing
// session bus is fatal; audio and watcher failures are logged.
func (d *Daemon) Start() error {
	if d.server != nil {
		if err := d.server.Start(); err != nil {
			return err
		}
	}

	if d.audio != nil {
		if err := d.audio.Start(); err != nil {
			d.logger.Warn("audio unavailable", "error", err)
		}
	}

	if !d.opts.NoHotReload {
		d.themes.StartHotReload()

		d.watcher = NewConfigWatcher(d.opts.ConfigPath, d.logger)
		d.watcher.SetReloadCallback(d.ApplyConfig)
		d.watcher.SetErrorCallback(d.notifier.NotifyConfigError)
		if err := d.watcher.Start(d.Config()); err != nil {
			d.logger.Warn("config hot reload unavailable", "error", err)
			d.watcher = nil
		}
	}
	return nil
}

// Run starts the daemon and drives the terminal surface until ctx is done
// or the user quits.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Stop()

	d.logger.Info("toastyd ready", "version", d.opts.Version)
	return display.Run(ctx, d.Model(), d.surface)
}

// Stop shuts everything down. Live notifications are closed and open confirm
// dialogs dismissed first, so their events are recorded and D-Bus callers
// waiting on a dialog get their answer before the server goes away.
func (d *Daemon) Stop() {
	d.manager.CloseAll()
	if n := d.manager.DismissAll(); n > 0 {
		d.logger.Debug("dismissed open dialogs", "count", n)
	}

	if d.watcher != nil {
		d.watcher.Stop()
	}
	d.themes.StopHotReload()
	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			d.logger.Warn("error stopping D-Bus server", "error", err)
		}
	}
	if d.audio != nil {
		d.audio.Stop()
	}
	d.surface.Stop()
	if err := d.history.Close(); err != nil {
		d.logger.Warn("error closing history", "error", err)
	}
	d.logger.Info("toastyd stopped")
}

// ApplyConfig switches the running daemon to cfg.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	d.manager.UpdateSettings(SettingsFrom(cfg))
	d.manager.Deduplicator().Configure(cfg.Dedup.Enabled, cfg.Dedup.Window.Duration(), RulesFrom(cfg))
	d.renderer.SetWidth(cfg.Display.Width)
	d.surface.SetLayout(cfg.Display.CellHeight, cfg.Display.MaxVisible)
	d.history.SetLimit(cfg.Behavior.HistoryLength)
	if d.audio != nil {
		d.audio.UpdateConfig(cfg)
	}

	if old == nil || old.Theme.Name != cfg.Theme.Name {
		t := d.themes.LoadTheme(cfg.Theme.Name)
		d.notifier.NotifyThemeReloaded(t.Name)
	}

	d.notifier.NotifyConfigReloaded()
}

// record appends an event to the history. Failures are logged and surfaced
// once per interval as an internal notification.
func (d *Daemon) record(e *model.Event, err error) {
	if err == nil {
		err = d.history.Add(*e)
	}
	if err == nil || errors.Is(err, store.ErrStoreClosed) {
		return
	}
	d.logger.Error("failed to record event", "error", err)
	d.notifier.NotifyHistoryError(err)
}

func (d *Daemon) newEvent(kind model.Kind) (*model.Event, error) {
	now := time.Now()
	if d.opts.Clock != nil {
		now = d.opts.Clock.Now()
	}
	return model.NewEvent(kind, now)
}

func (d *Daemon) onShow(n notify.Node) {
	e, err := d.newEvent(model.KindShown)
	if err == nil {
		e.NotificationID = uint64(n.ID)
		e.Type = string(n.Type)
		e.Message = n.Message
	}
	d.record(e, err)

	if d.audio != nil {
		if err := d.audio.PlayForType(n.Type); err != nil {
			d.logger.Debug("sound failed", "type", n.Type, "error", err)
		}
	}
}

func (d *Daemon) onClose(n notify.Node, reason notify.CloseReason) {
	e, err := d.newEvent(model.KindClosed)
	if err == nil {
		e.NotificationID = uint64(n.ID)
		e.Type = string(n.Type)
		e.Message = n.Message
		e.Reason = reason.String()
	}
	d.record(e, err)

	if d.server != nil {
		if err := d.server.EmitClosed(n.ID, reason); err != nil && !errors.Is(err, dbus.ErrNotConnected) {
			d.logger.Warn("failed to emit Closed signal", "id", n.ID.String(), "error", err)
		}
	}
}

func (d *Daemon) onSuppress(t notify.Type, message string, s notify.Suppressed) {
	e, err := d.newEvent(model.KindSuppressed)
	if err == nil {
		e.Type = string(t)
		e.Message = message
		e.Category = s.Category
		e.Reason = s.Reason.String()
	}
	d.record(e, err)
}

func (d *Daemon) onConfirm(dlg *notify.Dialog, result error) {
	kind := model.KindConfirmed
	reason := ""
	var cancelled *notify.CancelledError
	if errors.As(result, &cancelled) {
		kind = model.KindCancelled
		reason = "cancelled"
		if cancelled.Dismissed {
			reason = "dismissed"
		}
	}

	e, err := d.newEvent(kind)
	if err == nil {
		e.DialogID = uint64(dlg.ID)
		e.Type = string(dlg.Type)
		e.Title = dlg.Title
		e.Message = dlg.Message
		e.Reason = reason
	}
	d.record(e, err)
}

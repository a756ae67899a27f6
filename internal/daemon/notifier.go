package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/notify"
)

// InternalNotifier shows toasts about the daemon itself, such as a rejected
// config. Repeats of the same key are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	show func(t notify.Type, message string)
	now  func() time.Time

	lastNotify  map[string]time.Time
	minInterval time.Duration
	enabled     bool
}

// NewInternalNotifier creates a notifier that displays through show.
func NewInternalNotifier(show func(t notify.Type, message string), logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:      logger,
		show:        show,
		now:         time.Now,
		lastNotify:  make(map[string]time.Time),
		minInterval: 5 * time.Second,
		enabled:     true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows message unless key was used within the minimum interval.
// It reports whether the notification was shown.
func (n *InternalNotifier) Notify(key string, t notify.Type, message string) bool {
	n.mu.Lock()
	if !n.enabled || n.show == nil {
		n.mu.Unlock()
		return false
	}
	now := n.now()
	if last, ok := n.lastNotify[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key)
		return false
	}
	n.lastNotify[key] = now
	show := n.show
	n.mu.Unlock()

	n.logger.Debug("sending internal notification", "key", key, "type", t)
	show(t, message)
	return true
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", notify.TypeInfo, "Configuration reloaded")
}

// NotifyConfigError reports a rejected config.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", notify.TypeWarning, "Failed to reload configuration: "+err.Error())
}

// NotifyThemeReloaded reports a theme change.
func (n *InternalNotifier) NotifyThemeReloaded(name string) {
	n.Notify("theme-reload", notify.TypeInfo, "Theme '"+name+"' loaded")
}

// NotifyHistoryError reports that events can no longer be recorded.
func (n *InternalNotifier) NotifyHistoryError(err error) {
	n.Notify("history-error", notify.TypeError, "Failed to record history: "+err.Error())
}

package notify

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
)

// ShowCallback is called after a notification is attached.
type ShowCallback func(n Node)

// CloseCallback is called after a notification is detached.
type CloseCallback func(n Node, reason CloseReason)

// SuppressCallback is called when a typed notification is deduplicated away.
type SuppressCallback func(t Type, message string, s Suppressed)

// ConfirmCallback is called when a confirm dialog settles. err is nil on
// confirmation.
type ConfirmCallback func(d *Dialog, err error)

// instance is a live notification.
type instance struct {
	node    Node
	onClose func()
	timer   *autoClose

	// shownOffset is the offset the surface last received for this node.
	shownOffset int
	// footprint is the height plus the gap in force when the node was shown.
	// Later nodes were stacked using it, so a close shifts them by the same amount.
	footprint int
}

// Manager owns the live notification stack. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	surface  Surface
	dialogs  DialogPresenter
	clock    Clock
	logger   *slog.Logger
	settings Settings
	dedup    *Deduplicator

	// Live notifications in creation order (= stacking order)
	live       []*instance
	nextID     ID
	nextDialog DialogID

	// Confirm dialogs not yet settled
	open map[DialogID]*Dialog

	// Callbacks
	onShow     ShowCallback
	onClose    CloseCallback
	onSuppress SuppressCallback
	onConfirm  ConfirmCallback
}

// NewManager creates a Manager rendering onto surface. dialogs may be nil, in
// which case every Confirm is dismissed immediately.
func NewManager(surface Surface, dialogs DialogPresenter, settings Settings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		surface:  surface,
		dialogs:  dialogs,
		clock:    SystemClock{},
		logger:   logger,
		settings: settings,
		dedup:    NewDeduplicator(DefaultDedupWindow, nil),
	}
}

// SetClock replaces the clock used for timers and deduplication.
// It must be called before the first notification is shown.
func (m *Manager) SetClock(c Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = c
}

// Deduplicator returns the deduplicator used by the typed shortcuts.
func (m *Manager) Deduplicator() *Deduplicator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dedup
}

// SetDeduplicator replaces the deduplicator used by the typed shortcuts.
func (m *Manager) SetDeduplicator(d *Deduplicator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dedup = d
}

// SetShowCallback sets the callback for shown notifications.
func (m *Manager) SetShowCallback(cb ShowCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onShow = cb
}

// SetCloseCallback sets the callback for closed notifications.
func (m *Manager) SetCloseCallback(cb CloseCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose = cb
}

// SetSuppressCallback sets the callback for suppressed notifications.
func (m *Manager) SetSuppressCallback(cb SuppressCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSuppress = cb
}

// SetConfirmCallback sets the callback for settled confirm dialogs.
func (m *Manager) SetConfirmCallback(cb ConfirmCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConfirm = cb
}

// Settings returns the current defaults.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings replaces the defaults. Live notifications keep their offsets
// and timers; new notifications use the new values.
func (m *Manager) UpdateSettings(s Settings) {
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()

	m.logger.Debug("notification settings updated",
		"offset", s.Offset,
		"gap", s.Gap,
		"duration", s.Duration,
		"pause_on_hover", s.PauseOnHover,
	)
}

// Show displays a notification without deduplication. v is a message value
// or an Options value, see OptionsFrom.
func (m *Manager) Show(v any) *Handle {
	return m.show(OptionsFrom(v))
}

// Success shows a deduplicated success notification.
func (m *Manager) Success(v any) Result { return m.typed(TypeSuccess, v) }

// Warning shows a deduplicated warning notification.
func (m *Manager) Warning(v any) Result { return m.typed(TypeWarning, v) }

// Info shows a deduplicated info notification.
func (m *Manager) Info(v any) Result { return m.typed(TypeInfo, v) }

// Error shows a deduplicated error notification.
func (m *Manager) Error(v any) Result { return m.typed(TypeError, v) }

// Typed shows a deduplicated notification of type t.
func (m *Manager) Typed(t Type, v any) Result {
	return m.typed(t, v)
}

func (m *Manager) typed(t Type, v any) Result {
	opts := OptionsFrom(v)
	opts.Type = t

	m.mu.Lock()
	dedup := m.dedup
	now := m.clock.Now()
	onSuppress := m.onSuppress
	m.mu.Unlock()

	if s, ok := dedup.Accept(t, opts.Message, now); !ok {
		m.logger.Debug("suppressed notification",
			"type", t,
			"message", opts.Message,
			"category", s.Category,
			"reason", s.Reason.String(),
		)
		if onSuppress != nil {
			onSuppress(t, opts.Message, s)
		}
		return s
	}

	return Shown{Handle: m.show(opts)}
}

func (m *Manager) show(opts Options) *Handle {
	m.mu.Lock()
	opts = opts.withDefaults(m.settings)

	// Stack below every live notification
	offset := opts.Offset
	for _, inst := range m.live {
		offset += inst.footprint
	}

	m.nextID++
	id := m.nextID

	node := Node{
		ID:        id,
		Type:      opts.Type,
		Message:   opts.Message,
		ShowClose: opts.ShowClose,
		Center:    opts.Center,
		Offset:    offset,
	}
	node.Height = m.surface.MeasureHeight(node)

	inst := &instance{
		node:        node,
		onClose:     opts.OnClose,
		timer:       newAutoClose(m.clock, *opts.Duration),
		shownOffset: offset,
		footprint:   node.Height + m.settings.Gap,
	}
	m.live = append(m.live, inst)
	m.surface.Attach(node)
	inst.timer.arm(m.expireFunc(id))

	onShow := m.onShow
	active := len(m.live)
	m.mu.Unlock()

	m.logger.Debug("showed notification",
		"id", id.String(),
		"type", node.Type,
		"offset", node.Offset,
		"height", node.Height,
		"duration", *opts.Duration,
		"active", active,
	)

	if onShow != nil {
		onShow(node)
	}

	return &Handle{m: m, id: id}
}

// expireFunc returns the timer callback for notification id.
func (m *Manager) expireFunc(id ID) func(gen uint64) {
	return func(gen uint64) {
		m.mu.Lock()
		inst := m.findLocked(id)
		due := inst != nil && inst.timer.due(gen)
		m.mu.Unlock()

		if due {
			m.close(id, CloseReasonExpired)
		}
	}
}

// Hover reports pointer enter (true) or leave (false) for a notification.
// Enter cancels the auto-close timer; leave arms a fresh full-duration timer.
func (m *Manager) Hover(id ID, hovering bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.settings.PauseOnHover {
		return
	}
	inst := m.findLocked(id)
	if inst == nil {
		return
	}
	if hovering {
		inst.timer.pause()
	} else {
		inst.timer.resume(m.expireFunc(id))
	}
}

// Close closes a notification programmatically. It returns false if the id
// is not live.
func (m *Manager) Close(id ID) bool {
	return m.close(id, CloseReasonClosed)
}

// Dismiss closes a notification on behalf of the user. It returns false if
// the id is not live.
func (m *Manager) Dismiss(id ID) bool {
	return m.close(id, CloseReasonDismissed)
}

func (m *Manager) close(id ID, reason CloseReason) bool {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return false
	}

	inst := m.live[idx]
	m.live = slices.Delete(m.live, idx, idx+1)
	inst.timer.close()

	// Everything below moves up by the closed notification's footprint
	shift := inst.footprint
	for _, other := range m.live[idx:] {
		other.node.Offset -= shift
	}
	m.mu.Unlock()

	if inst.onClose != nil {
		inst.onClose()
	}

	m.mu.Lock()
	m.surface.Detach(inst.node)
	m.relayoutLocked()
	onClose := m.onClose
	remaining := len(m.live)
	m.mu.Unlock()

	m.logger.Debug("closed notification",
		"id", id.String(),
		"reason", reason.String(),
		"remaining", remaining,
	)

	if onClose != nil {
		onClose(inst.node, reason)
	}
	return true
}

// relayoutLocked pushes changed offsets to the surface. Caller must hold the lock.
func (m *Manager) relayoutLocked() {
	for _, inst := range m.live {
		if inst.node.Offset != inst.shownOffset {
			inst.shownOffset = inst.node.Offset
			m.surface.Move(inst.node)
		}
	}
}

// CloseAll closes every live notification in stacking order.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	ids := make([]ID, 0, len(m.live))
	for _, inst := range m.live {
		ids = append(ids, inst.node.ID)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.close(id, CloseReasonClosed)
	}
}

// Get returns the current node for id.
func (m *Manager) Get(id ID) (Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst := m.findLocked(id); inst != nil {
		return inst.node, true
	}
	return Node{}, false
}

// TimerState returns the auto-close state for id.
func (m *Manager) TimerState(id ID) (TimerState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst := m.findLocked(id); inst != nil {
		return inst.timer.state, true
	}
	return 0, false
}

// Live returns the live notifications in stacking order.
func (m *Manager) Live() []Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	nodes := make([]Node, len(m.live))
	for i, inst := range m.live {
		nodes[i] = inst.node
	}
	return nodes
}

// Count returns the number of live notifications.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Confirm presents a modal confirmation dialog. An empty title uses "Confirm".
// The returned Pending resolves with nil on confirmation and rejects with
// ErrCancelled on cancel or dismiss. It has no timeout.
func (m *Manager) Confirm(message, title string, opts ConfirmOptions) *Pending {
	if title == "" {
		title = "Confirm"
	}
	if opts.ConfirmButtonText == "" {
		opts.ConfirmButtonText = "Confirm"
	}
	if opts.CancelButtonText == "" {
		opts.CancelButtonText = "Cancel"
	}

	m.mu.Lock()
	m.nextDialog++
	d := &Dialog{
		ID:          m.nextDialog,
		Title:       title,
		Message:     message,
		ConfirmText: opts.ConfirmButtonText,
		CancelText:  opts.CancelButtonText,
		Type:        opts.Type,
	}
	presenter := m.dialogs
	m.mu.Unlock()

	d.pending = newPending(d.ID, func(err error) {
		if presenter != nil {
			presenter.Close(d)
		}

		m.mu.Lock()
		delete(m.open, d.ID)
		onConfirm := m.onConfirm
		m.mu.Unlock()

		m.logger.Debug("confirm dialog settled",
			"dialog_id", uint64(d.ID),
			"confirmed", err == nil,
		)
		if onConfirm != nil {
			onConfirm(d, err)
		}
	})

	if presenter == nil {
		m.logger.Warn("no dialog presenter, dismissing confirm", "title", title)
		d.Dismiss()
		return d.pending
	}

	m.mu.Lock()
	if m.open == nil {
		m.open = make(map[DialogID]*Dialog)
	}
	m.open[d.ID] = d
	m.mu.Unlock()

	presenter.Present(d)
	return d.pending
}

// DismissAll dismisses every open confirm dialog, oldest first, and returns
// how many were settled. Their results reject with ErrCancelled.
func (m *Manager) DismissAll() int {
	m.mu.Lock()
	dialogs := make([]*Dialog, 0, len(m.open))
	for _, d := range m.open {
		dialogs = append(dialogs, d)
	}
	m.mu.Unlock()

	slices.SortFunc(dialogs, func(a, b *Dialog) int {
		return cmp.Compare(a.ID, b.ID)
	})

	n := 0
	for _, d := range dialogs {
		if d.Dismiss() {
			n++
		}
	}
	return n
}

// OpenDialogs returns the number of confirm dialogs awaiting an answer.
func (m *Manager) OpenDialogs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

func (m *Manager) indexLocked(id ID) int {
	return slices.IndexFunc(m.live, func(inst *instance) bool {
		return inst.node.ID == id
	})
}

func (m *Manager) findLocked(id ID) *instance {
	if idx := m.indexLocked(id); idx >= 0 {
		return m.live[idx]
	}
	return nil
}

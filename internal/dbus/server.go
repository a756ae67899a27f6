package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toasty/internal/notify"
)

// Backend is the notification manager the server forwards calls to.
type Backend interface {
	Show(v any) *notify.Handle
	Typed(t notify.Type, v any) notify.Result
	Close(id notify.ID) bool
	CloseAll()
	Confirm(message, title string, opts notify.ConfirmOptions) *notify.Pending
	Count() int
}

// Server implements the io.github.jmylchreest.Toasty interface.
type Server struct {
	backend Backend
	logger  *slog.Logger

	mu         sync.RWMutex
	conn       *dbus.Conn
	serverInfo ServerInfo
	running    bool

	// quit is closed by Stop; waiters tracks ConfirmSettled emitters
	// started while it was open.
	quit    chan struct{}
	waiters sync.WaitGroup
}

// NewServer creates a server forwarding to backend.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		backend:    backend,
		logger:     logger,
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// Start connects to the session bus, exports the service and claims the
// bus name.
func (s *Server) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return s.Serve(conn)
}

// Serve exports the service on an existing connection.
func (s *Server) Serve(conn *dbus.Conn) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.mu.Unlock()

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: methods(),
				Signals: signals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.quit = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("D-Bus server started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
// ConfirmSettled signals for dialogs already settled are sent first; callers
// settle open dialogs before stopping so clients waiting on them return.
func (s *Server) Stop() error {
	s.mu.Lock()
	quit := s.quit
	s.quit = nil
	s.mu.Unlock()
	if quit == nil {
		return nil
	}

	close(quit)
	s.waiters.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		_ = s.conn.Export(nil, Path, Interface)
	}

	s.logger.Info("D-Bus server stopped")
	return nil
}

func invalidArgs(err error) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", []any{err.Error()})
}

// GetCapabilities returns the features supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	return Capabilities, nil
}

// GetServerInformation returns the server name, vendor and version.
// D-Bus method: GetServerInformation() -> (sss)
func (s *Server) GetServerInformation() (string, string, string, *dbus.Error) {
	s.mu.RLock()
	info := s.serverInfo
	s.mu.RUnlock()
	return info.Name, info.Vendor, info.Version, nil
}

// Show displays a notification without deduplication.
// D-Bus method: Show(ssib) -> t
func (s *Server) Show(typ, message string, durationMs int32, showClose bool) (uint64, *dbus.Error) {
	opts, err := ShowRequest{Type: typ, Message: message, DurationMs: durationMs, ShowClose: showClose}.Options()
	if err != nil {
		return 0, invalidArgs(err)
	}

	h := s.backend.Show(opts)
	s.logger.Debug("Show called", "type", opts.Type, "id", h.ID().String())
	return uint64(h.ID()), nil
}

// Notify displays a typed notification through the deduplicator. shown is
// false when it was suppressed, with reason and category describing why.
// D-Bus method: Notify(ssib) -> (tbss)
func (s *Server) Notify(typ, message string, durationMs int32, showClose bool) (uint64, bool, string, string, *dbus.Error) {
	opts, err := ShowRequest{Type: typ, Message: message, DurationMs: durationMs, ShowClose: showClose}.Options()
	if err != nil {
		return 0, false, "", "", invalidArgs(err)
	}

	switch r := s.backend.Typed(opts.Type, opts).(type) {
	case notify.Shown:
		return uint64(r.Handle.ID()), true, "", "", nil
	case notify.Suppressed:
		s.logger.Debug("Notify suppressed", "type", opts.Type, "reason", r.Reason.String())
		return 0, false, r.Reason.String(), r.Category, nil
	default:
		return 0, false, "", "", dbus.MakeFailedError(fmt.Errorf("unexpected result %T", r))
	}
}

// Close closes a notification. It returns false if the id is not live.
// D-Bus method: Close(t) -> b
func (s *Server) Close(id uint64) (bool, *dbus.Error) {
	return s.backend.Close(notify.ID(id)), nil
}

// CloseAll closes every live notification.
// D-Bus method: CloseAll() -> u
func (s *Server) CloseAll() (uint32, *dbus.Error) {
	n := s.backend.Count()
	s.backend.CloseAll()
	return uint32(n), nil
}

// Confirm opens a confirm dialog and returns its id at once. The answer is
// delivered by the ConfirmSettled signal.
// D-Bus method: Confirm(sssss) -> t
func (s *Server) Confirm(message, title, confirmText, cancelText, typ string) (uint64, *dbus.Error) {
	opts, err := ConfirmRequest{
		Message:     message,
		Title:       title,
		ConfirmText: confirmText,
		CancelText:  cancelText,
		Type:        typ,
	}.Options()
	if err != nil {
		return 0, invalidArgs(err)
	}

	p := s.backend.Confirm(message, title, opts)
	id := p.ID()

	s.mu.RLock()
	quit := s.quit
	if quit != nil {
		s.waiters.Add(1)
	}
	s.mu.RUnlock()

	go func() {
		if quit != nil {
			defer s.waiters.Done()
		}
		select {
		case <-p.Done():
		case <-quit:
			// Stopping: only report answers that are already in
			select {
			case <-p.Done():
			default:
				return
			}
		}
		if err := s.EmitConfirmSettled(id, p.Err()); err != nil {
			s.logger.Warn("failed to emit ConfirmSettled signal", "dialog_id", uint64(id), "error", err)
		}
	}()
	return uint64(id), nil
}

func methods() []introspect.Method {
	out := func(name, typ string) introspect.Arg {
		return introspect.Arg{Name: name, Type: typ, Direction: "out"}
	}
	in := func(name, typ string) introspect.Arg {
		return introspect.Arg{Name: name, Type: typ, Direction: "in"}
	}
	show := []introspect.Arg{
		in("type", "s"),
		in("message", "s"),
		in("duration_ms", "i"),
		in("show_close", "b"),
	}

	return []introspect.Method{
		{Name: "GetCapabilities", Args: []introspect.Arg{out("capabilities", "as")}},
		{Name: "GetServerInformation", Args: []introspect.Arg{
			out("name", "s"), out("vendor", "s"), out("version", "s"),
		}},
		{Name: "Show", Args: append(show[:len(show):len(show)], out("id", "t"))},
		{Name: "Notify", Args: append(show[:len(show):len(show)],
			out("id", "t"), out("shown", "b"), out("reason", "s"), out("category", "s"),
		)},
		{Name: "Close", Args: []introspect.Arg{in("id", "t"), out("closed", "b")}},
		{Name: "CloseAll", Args: []introspect.Arg{out("count", "u")}},
		{Name: "Confirm", Args: []introspect.Arg{
			in("message", "s"), in("title", "s"), in("confirm_text", "s"),
			in("cancel_text", "s"), in("type", "s"), out("dialog_id", "t"),
		}},
	}
}

func signals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Closed",
			Args: []introspect.Arg{
				{Name: "id", Type: "t"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ConfirmSettled",
			Args: []introspect.Arg{
				{Name: "dialog_id", Type: "t"},
				{Name: "confirmed", Type: "b"},
				{Name: "dismissed", Type: "b"},
			},
		},
	}
}

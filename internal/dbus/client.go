package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toasty/internal/notify"
)

// Client calls a running toastyd over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to the session bus.
func Dial() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{conn: conn, obj: conn.Object(BusName, Path)}
}

// Close closes the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, args ...any) *dbus.Call {
	return c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
}

// Show displays a notification without deduplication.
func (c *Client) Show(ctx context.Context, req ShowRequest) (notify.ID, error) {
	var id uint64
	if err := c.call(ctx, "Show", req.Type, req.Message, req.DurationMs, req.ShowClose).Store(&id); err != nil {
		return 0, err
	}
	return notify.ID(id), nil
}

// NotifyResult is the reply to Notify.
type NotifyResult struct {
	ID       notify.ID
	Shown    bool
	Reason   string
	Category string
}

// Notify displays a typed notification through the daemon's deduplicator.
func (c *Client) Notify(ctx context.Context, req ShowRequest) (NotifyResult, error) {
	var (
		id uint64
		r  NotifyResult
	)
	err := c.call(ctx, "Notify", req.Type, req.Message, req.DurationMs, req.ShowClose).
		Store(&id, &r.Shown, &r.Reason, &r.Category)
	r.ID = notify.ID(id)
	return r, err
}

// CloseNotification closes a notification by id.
func (c *Client) CloseNotification(ctx context.Context, id notify.ID) (bool, error) {
	var closed bool
	err := c.call(ctx, "Close", uint64(id)).Store(&closed)
	return closed, err
}

// CloseAll closes every live notification and returns how many there were.
func (c *Client) CloseAll(ctx context.Context) (int, error) {
	var n uint32
	err := c.call(ctx, "CloseAll").Store(&n)
	return int(n), err
}

// ServerInformation returns the daemon's name, vendor and version.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.call(ctx, "GetServerInformation").Store(&info.Name, &info.Vendor, &info.Version)
	return info, err
}

// Confirm opens a dialog on the daemon and blocks until it is settled or ctx
// is done. It returns nil on confirmation and a *notify.CancelledError on
// cancel or dismiss.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) error {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember("ConfirmSettled"),
	}
	if err := c.conn.AddMatchSignalContext(ctx, match...); err != nil {
		return fmt.Errorf("failed to subscribe to ConfirmSettled: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(match...) }()

	// Subscribe before calling so a fast answer is not missed
	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	var id uint64
	err := c.call(ctx, "Confirm", req.Message, req.Title, req.ConfirmText, req.CancelText, req.Type).Store(&id)
	if err != nil {
		return err
	}

	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return fmt.Errorf("connection closed while waiting for dialog %d", id)
			}
			if settled, confirmed, dismissed, ok := parseConfirmSettled(sig); ok && settled == id {
				return settledError(confirmed, dismissed)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseConfirmSettled(sig *dbus.Signal) (id uint64, confirmed, dismissed, ok bool) {
	if sig == nil || sig.Name != Interface+".ConfirmSettled" || len(sig.Body) != 3 {
		return 0, false, false, false
	}
	id, ok1 := sig.Body[0].(uint64)
	confirmed, ok2 := sig.Body[1].(bool)
	dismissed, ok3 := sig.Body[2].(bool)
	return id, confirmed, dismissed, ok1 && ok2 && ok3
}

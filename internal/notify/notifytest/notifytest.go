// Package notifytest provides fakes for testing code built on notify.
package notifytest

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/notify"
)

// Compile-time interface checks.
var (
	_ notify.Clock           = (*ManualClock)(nil)
	_ notify.Surface         = (*Surface)(nil)
	_ notify.DialogPresenter = (*Presenter)(nil)
)

// ManualClock is a Clock that only moves when Advance is called.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

// NewManualClock creates a clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements notify.Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements notify.Clock.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) notify.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, deadline: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements notify.Timer.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and runs every timer that came due, in
// deadline order. Callbacks run without the clock lock held.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now

	var due []*manualTimer
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.deadline.After(now):
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of timers that have neither fired nor stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Surface records every call made by the manager.
type Surface struct {
	mu sync.Mutex

	// Height is returned by MeasureHeight unless Heights has an entry for
	// the message.
	Height  int
	Heights map[string]int

	attached map[notify.ID]notify.Node
	calls    []string
}

// NewSurface creates a recording surface where every node is height pixels tall.
func NewSurface(height int) *Surface {
	return &Surface{
		Height:   height,
		Heights:  make(map[string]int),
		attached: make(map[notify.ID]notify.Node),
	}
}

// Attach implements notify.Surface.
func (s *Surface) Attach(n notify.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached[n.ID] = n
	s.calls = append(s.calls, "attach "+n.ID.String())
}

// Detach implements notify.Surface.
func (s *Surface) Detach(n notify.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attached, n.ID)
	s.calls = append(s.calls, "detach "+n.ID.String())
}

// MeasureHeight implements notify.Surface.
func (s *Surface) MeasureHeight(n notify.Node) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.Heights[n.Message]; ok {
		return h
	}
	return s.Height
}

// Move implements notify.Surface.
func (s *Surface) Move(n notify.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached[n.ID] = n
	s.calls = append(s.calls, "move "+n.ID.String())
}

// Attached returns the attached nodes ordered by offset.
func (s *Surface) Attached() []notify.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := make([]notify.Node, 0, len(s.attached))
	for _, n := range s.attached {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b notify.Node) int { return a.Offset - b.Offset })
	return nodes
}

// Calls returns the recorded call log.
func (s *Surface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Presenter records presented dialogs.
type Presenter struct {
	mu      sync.Mutex
	shown   []*notify.Dialog
	visible map[notify.DialogID]*notify.Dialog
}

// NewPresenter creates a recording dialog presenter.
func NewPresenter() *Presenter {
	return &Presenter{visible: make(map[notify.DialogID]*notify.Dialog)}
}

// Present implements notify.DialogPresenter.
func (p *Presenter) Present(d *notify.Dialog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, d)
	p.visible[d.ID] = d
}

// Close implements notify.DialogPresenter.
func (p *Presenter) Close(d *notify.Dialog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.visible, d.ID)
}

// Last returns the most recently presented dialog, or nil.
func (p *Presenter) Last() *notify.Dialog {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.shown) == 0 {
		return nil
	}
	return p.shown[len(p.shown)-1]
}

// Visible returns the number of dialogs presented and not yet closed.
func (p *Presenter) Visible() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visible)
}

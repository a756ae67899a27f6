package display

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/toasty/internal/notify"
	"github.com/jmylchreest/toasty/internal/theme"
)

// Messages posted by the surface to the running program.
type (
	attachMsg       struct{ node notify.Node }
	moveMsg         struct{ node notify.Node }
	detachMsg       struct{ id notify.ID }
	dialogMsg       struct{ dialog *notify.Dialog }
	dialogClosedMsg struct{ id notify.DialogID }
	layoutMsg       struct{ cellHeight, maxVisible int }
	refreshMsg      struct{}
)

// Sender delivers messages to a bubbletea program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Compile-time checks that Surface implements the manager's interfaces.
var (
	_ notify.Surface         = (*Surface)(nil)
	_ notify.DialogPresenter = (*Surface)(nil)
)

// Surface forwards manager calls to a bubbletea program.
// The manager calls it while holding its own lock and the program calls back
// into the manager from Update, so every method only enqueues and returns.
type Surface struct {
	renderer *Renderer

	mu         sync.RWMutex
	cellHeight int

	box *mailbox
}

// NewSurface creates a surface. Messages queue until Bind is called.
func NewSurface(renderer *Renderer, cellHeight int) *Surface {
	return &Surface{
		renderer:   renderer,
		cellHeight: max(cellHeight, 1),
		box:        newMailbox(),
	}
}

// Bind starts delivering queued and future messages to p, in order.
func (s *Surface) Bind(p Sender) {
	s.box.start(p.Send)
}

// Stop halts delivery. Messages posted afterwards are dropped.
func (s *Surface) Stop() {
	s.box.stop()
}

// Attach implements notify.Surface.
func (s *Surface) Attach(n notify.Node) { s.box.post(attachMsg{node: n}) }

// Detach implements notify.Surface.
func (s *Surface) Detach(n notify.Node) { s.box.post(detachMsg{id: n.ID}) }

// Move implements notify.Surface.
func (s *Surface) Move(n notify.Node) { s.box.post(moveMsg{node: n}) }

// MeasureHeight implements notify.Surface. Rows are converted to the manager's
// pixel units with the configured cell height.
func (s *Surface) MeasureHeight(n notify.Node) int {
	return s.renderer.Lines(n) * s.CellHeight()
}

// Present implements notify.DialogPresenter.
func (s *Surface) Present(d *notify.Dialog) { s.box.post(dialogMsg{dialog: d}) }

// Close implements notify.DialogPresenter.
func (s *Surface) Close(d *notify.Dialog) { s.box.post(dialogClosedMsg{id: d.ID}) }

// CellHeight returns the pixels represented by one terminal row.
func (s *Surface) CellHeight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cellHeight
}

// SetLayout updates the row size and render cap.
func (s *Surface) SetLayout(cellHeight, maxVisible int) {
	cellHeight = max(cellHeight, 1)
	s.mu.Lock()
	s.cellHeight = cellHeight
	s.mu.Unlock()
	s.box.post(layoutMsg{cellHeight: cellHeight, maxVisible: maxVisible})
}

// SetTheme swaps the palette and redraws.
func (s *Surface) SetTheme(t *theme.Theme) {
	if t == nil {
		return
	}
	s.renderer.SetPalette(t.Palette)
	s.box.post(refreshMsg{})
}

// mailbox is an unbounded FIFO drained by a single goroutine, so posting
// never blocks and delivery order matches posting order.
type mailbox struct {
	mu      sync.Mutex
	queue   []tea.Msg
	wake    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

func newMailbox() *mailbox {
	return &mailbox{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (b *mailbox) post(msg tea.Msg) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *mailbox) start(send func(tea.Msg)) {
	b.mu.Lock()
	if b.started || b.stopped {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go b.run(send)

	// Flush anything posted before start
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *mailbox) run(send func(tea.Msg)) {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		for {
			b.mu.Lock()
			batch := b.queue
			b.queue = nil
			b.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, msg := range batch {
				select {
				case <-b.done:
					return
				default:
				}
				send(msg)
			}
		}
	}
}

func (b *mailbox) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	b.queue = nil
	close(b.done)
}

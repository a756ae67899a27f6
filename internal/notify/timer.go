package notify

import "time"

// TimerState is the state of a notification's auto-close timer.
type TimerState int

const (
	// TimerIdle means auto-close is disabled (duration zero).
	TimerIdle TimerState = iota
	// TimerScheduled means a close is pending at the deadline.
	TimerScheduled
	// TimerPaused means the pointer is over the notification.
	TimerPaused
	// TimerFired means the deadline passed and the notification closed.
	TimerFired
	// TimerClosed means the notification closed before the deadline.
	TimerClosed
)

// String returns the string representation of TimerState.
func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerScheduled:
		return "scheduled"
	case TimerPaused:
		return "paused"
	case TimerFired:
		return "fired"
	case TimerClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// autoClose drives Scheduled(deadline) -> Paused -> Scheduled(fresh deadline)
// -> Fired/Closed. All methods are called with the manager lock held.
type autoClose struct {
	clock    Clock
	duration time.Duration
	state    TimerState
	deadline time.Time
	timer    Timer

	// gen is bumped on every re-arm so a stale callback from a stopped timer
	// can be recognised and ignored.
	gen uint64
}

func newAutoClose(clock Clock, duration time.Duration) *autoClose {
	return &autoClose{clock: clock, duration: duration, state: TimerIdle}
}

// arm schedules a fresh full-duration timer. fire receives the generation
// it was armed with.
func (a *autoClose) arm(fire func(gen uint64)) {
	if a.duration <= 0 {
		return
	}
	if a.state != TimerIdle && a.state != TimerPaused {
		return
	}
	a.gen++
	gen := a.gen
	a.deadline = a.clock.Now().Add(a.duration)
	a.timer = a.clock.AfterFunc(a.duration, func() { fire(gen) })
	a.state = TimerScheduled
}

// pause cancels the pending timer.
func (a *autoClose) pause() {
	if a.state != TimerScheduled {
		return
	}
	a.stopTimer()
	a.state = TimerPaused
}

// resume re-arms a fresh full-duration timer after a pause.
func (a *autoClose) resume(fire func(gen uint64)) {
	if a.state != TimerPaused {
		return
	}
	a.arm(fire)
}

// due reports whether a callback for gen should close the notification, and
// if so moves the machine to TimerFired.
func (a *autoClose) due(gen uint64) bool {
	if a.state != TimerScheduled || gen != a.gen {
		return false
	}
	a.timer = nil
	a.state = TimerFired
	return true
}

// close stops any pending timer. A fired timer stays fired.
func (a *autoClose) close() {
	if a.state == TimerFired || a.state == TimerClosed {
		return
	}
	a.stopTimer()
	a.state = TimerClosed
}

func (a *autoClose) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.deadline = time.Time{}
}

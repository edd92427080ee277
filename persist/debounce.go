package persist

import "time"

// DefaultDelay is the quiet period before an autosave.
const DefaultDelay = 500 * time.Millisecond

// Debouncer holds at most one pending deadline. Touch replaces it, Due fires
// it once, Cancel drops it. It is polled from the game loop rather than
// running its own timer.
type Debouncer struct {
	delay    time.Duration
	deadline time.Time
	pending  bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// SetDelay changes the quiet period for future Touch calls.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay >= 0 {
		d.delay = delay
	}
}

// Touch (re)schedules the deadline delay after now.
func (d *Debouncer) Touch(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.pending = true
}

// Due reports whether the pending deadline has passed, consuming it.
func (d *Debouncer) Due(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

func (d *Debouncer) Pending() bool { return d.pending }

func (d *Debouncer) Cancel() { d.pending = false }

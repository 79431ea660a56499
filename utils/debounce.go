package utils

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of triggers into a single invocation: only the
// last function scheduled within the quiescence window runs. Re-triggering
// cancels the pending timer but never an in-flight invocation; stale
// results are the caller's problem and are handled by sequence tokens.
type Debouncer struct {
	window time.Duration

	m     sync.Mutex
	timer *time.Timer
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	return &Debouncer{window: window}
}

func (d *Debouncer) Trigger(fn func()) {
	d.m.Lock()
	defer d.m.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.m.Lock()
	defer d.m.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

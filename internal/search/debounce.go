package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before suggestions are recomputed.
const DefaultDebounce = 300 * time.Millisecond

// ErrSuperseded is returned to a debounced call that a newer call replaced.
var ErrSuperseded = errors.New("superseded by a newer request")

// Debouncer lets only the last of a burst of calls through. Each call waits
// for the quiet period; if another call arrives first, the waiting one
// returns ErrSuperseded without running.
type Debouncer struct {
	delay time.Duration

	mu  sync.Mutex
	seq uint64
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Do runs fn once the quiet period has passed with no newer call.
func (d *Debouncer) Do(ctx context.Context, fn func()) error {
	d.mu.Lock()
	d.seq++
	mine := d.seq
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	d.mu.Lock()
	latest := d.seq == mine
	d.mu.Unlock()
	if !latest {
		return ErrSuperseded
	}

	fn()
	return nil
}

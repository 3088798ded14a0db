// Package timer arms the repeating wall-clock timer that drives periodic
// cycles.
//
// A Trigger fires once after the initial delay and then once every period.
// Expiries are only recorded, never acted upon: Wait returns when at least
// one expiry happened since the previous Wait. Expiries that arrive while
// nobody waits coalesce into a single pending wake-up.
//
// A zero period arms a one-shot timer, the same as setitimer(2) with a zero
// it_interval. A negative period is rejected with EINVAL.
package timer

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/bebsworthy/periodic/internal/errors"
)

// Trigger is a source of periodic wake-ups.
type Trigger interface {
	// Arm starts the timer. It must be called once, before Wait.
	Arm(initial, period time.Duration) error
	// Wait blocks until the next expiry or until ctx is done.
	Wait(ctx context.Context) error
	// Stop disarms the timer. Safe to call more than once.
	Stop() error
}

// Ticker is a Trigger driven by the Go runtime timers. It is used where no
// OS interval timer is available and in tests.
type Ticker struct {
	c        chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTicker creates an unarmed Ticker
func NewTicker() *Ticker {
	return &Ticker{
		c:    make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// Arm starts the ticker goroutine
func (t *Ticker) Arm(initial, period time.Duration) error {
	if initial < 0 || period < 0 {
		return errors.ResourceError(errors.CodeTimerArm, "Failed to arm interval timer", syscall.EINVAL)
	}
	go t.run(initial, period)
	return nil
}

func (t *Ticker) run(initial, period time.Duration) {
	first := time.NewTimer(initial)
	defer first.Stop()

	select {
	case <-first.C:
		t.fire()
	case <-t.stop:
		return
	}

	if period == 0 {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.fire()
		case <-t.stop:
			return
		}
	}
}

// fire records an expiry without blocking
func (t *Ticker) fire() {
	select {
	case t.c <- struct{}{}:
	default:
	}
}

// Wait blocks until the next expiry
func (t *Ticker) Wait(ctx context.Context) error {
	select {
	case <-t.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop disarms the ticker
func (t *Ticker) Stop() error {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
	return nil
}

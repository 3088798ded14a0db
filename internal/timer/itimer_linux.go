//go:build linux

package timer

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bebsworthy/periodic/internal/errors"
)

// Itimer is a Trigger backed by setitimer(ITIMER_REAL). The kernel raises
// SIGALRM on every expiry and the Go runtime forwards it to a channel; no
// work happens in signal context.
type Itimer struct {
	sig      chan os.Signal
	stopOnce sync.Once
}

// NewItimer creates an unarmed Itimer
func NewItimer() *Itimer {
	return &Itimer{
		// capacity 1: the runtime drops deliveries when the buffer is full
		sig: make(chan os.Signal, 1),
	}
}

// Arm subscribes to SIGALRM and then arms the real-time interval timer.
// The subscription must exist first or the default SIGALRM action would
// terminate the process.
func (t *Itimer) Arm(initial, period time.Duration) error {
	signal.Notify(t.sig, unix.SIGALRM)

	it := unix.Itimerval{
		Value:    unix.NsecToTimeval(initial.Nanoseconds()),
		Interval: unix.NsecToTimeval(period.Nanoseconds()),
	}
	if _, err := unix.Setitimer(unix.ItimerReal, it); err != nil {
		signal.Stop(t.sig)
		return errors.ResourceError(errors.CodeTimerArm, "Failed to arm interval timer", err).
			WithDetails("initial_delay", initial.String()).
			WithDetails("period", period.String())
	}
	return nil
}

// Wait blocks until SIGALRM is delivered
func (t *Itimer) Wait(ctx context.Context) error {
	select {
	case <-t.sig:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop disarms the timer before dropping the SIGALRM subscription.
func (t *Itimer) Stop() error {
	var err error
	t.stopOnce.Do(func() {
		if _, e := unix.Setitimer(unix.ItimerReal, unix.Itimerval{}); e != nil {
			err = errors.ResourceError(errors.CodeTimerArm, "Failed to disarm interval timer", e)
		}
		signal.Stop(t.sig)
	})
	return err
}

// NewSystemTrigger returns the OS interval timer driver
func NewSystemTrigger() Trigger {
	return NewItimer()
}

//go:build !linux

package timer

// NewSystemTrigger returns the wall-clock ticker; setitimer is only wired on
// Linux.
func NewSystemTrigger() Trigger {
	return NewTicker()
}

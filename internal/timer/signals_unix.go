//go:build unix

package timer

import (
	"os/signal"

	"golang.org/x/sys/unix"
)

// IgnoreTerminalStop makes the process immune to the interactive stop key
// (SIGTSTP). The ignored disposition survives exec, so children spawned
// afterwards are immune too.
func IgnoreTerminalStop() {
	signal.Ignore(unix.SIGTSTP)
}

// TerminalStopIgnored reports whether SIGTSTP is currently ignored.
func TerminalStopIgnored() bool {
	return signal.Ignored(unix.SIGTSTP)
}

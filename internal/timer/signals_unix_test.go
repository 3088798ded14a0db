//go:build unix

package timer

import (
	"os/signal"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestIgnoreTerminalStop(t *testing.T) {
	defer signal.Reset(unix.SIGTSTP)

	IgnoreTerminalStop()
	assert.True(t, TerminalStopIgnored())
}

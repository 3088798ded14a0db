//go:build linux

package timer

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebsworthy/periodic/internal/errors"
)

func TestItimer_DeliversExpiries(t *testing.T) {
	itimer := NewItimer()

	start := time.Now()
	require.NoError(t, itimer.Arm(50*time.Millisecond, 30*time.Millisecond))
	defer itimer.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, waitWithin(t, itimer, 2*time.Second), "expiry %d", i)
	}

	// initial delay plus two periods
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestItimer_ZeroPeriodIsOneShot(t *testing.T) {
	itimer := NewItimer()

	require.NoError(t, itimer.Arm(20*time.Millisecond, 0))
	defer itimer.Stop()

	require.NoError(t, waitWithin(t, itimer, 2*time.Second))
	assert.Error(t, waitWithin(t, itimer, 150*time.Millisecond))
}

func TestItimer_NegativePeriodReturnsErrno(t *testing.T) {
	itimer := NewItimer()

	err := itimer.Arm(time.Second, -2*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTimerArm)
	assert.ErrorIs(t, err, syscall.EINVAL)
	assert.Equal(t, int(syscall.EINVAL), errors.ExitCode(err))
}

func TestItimer_StopDisarms(t *testing.T) {
	itimer := NewItimer()

	require.NoError(t, itimer.Arm(100*time.Millisecond, 100*time.Millisecond))
	require.NoError(t, itimer.Stop())
	require.NoError(t, itimer.Stop())

	// the process would be killed by SIGALRM here if the timer were still armed
	time.Sleep(250 * time.Millisecond)
}

func TestNewSystemTrigger_IsItimer(t *testing.T) {
	_, ok := NewSystemTrigger().(*Itimer)
	assert.True(t, ok)
}

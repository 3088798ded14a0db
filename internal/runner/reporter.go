package runner

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const separator = "------------------------------"

// TimestampLayout matches C asctime(3) without the trailing newline.
const TimestampLayout = time.ANSIC

// Reporter prints the human-readable progress lines to stdout.
// Write errors are ignored, as with printf.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// CycleStarted announces a wake-up and the current iteration counter
func (r *Reporter) CycleStarted(iteration int) {
	r.printf("%s\nReceived interval timer signal. Iteration: %d\n", separator, iteration)
}

// CycleFinished announces that the child has been reaped
func (r *Reporter) CycleFinished(at time.Time) {
	r.printf("Child process finished.\nFinish time: %s\n%s\n\n", FormatTimestamp(at), separator)
}

// RunFinished announces the end of the whole run
func (r *Reporter) RunFinished(at time.Time) {
	r.printf("Program fully completed.\nFinish time: %s\n\n", FormatTimestamp(at))
}

// ChildStarted is printed by the child itself
func (r *Reporter) ChildStarted(pid int, at time.Time) {
	r.printf("Child process (PID: %d) created.\nStart time: %s\n", pid, FormatTimestamp(at))
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// FormatTimestamp renders t in local time, asctime style
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

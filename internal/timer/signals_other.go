//go:build !unix

package timer

// IgnoreTerminalStop is a no-op where there is no job control.
func IgnoreTerminalStop() {}

// TerminalStopIgnored always reports false where there is no job control.
func TerminalStopIgnored() bool { return false }

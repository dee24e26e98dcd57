// Package logging defines the pluggable logging interface used across the
// node, transport, and bootstrap layers.
package logging

// Logger is the logging surface every component depends on. A node never
// talks to a concrete logging library directly, only to this interface, so
// the backend can be swapped with --log-backend without touching the
// algorithmic core.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	// ToggleDebug enables or disables Debug/Debugf output and returns the
	// resulting state.
	ToggleDebug(enabled bool) bool
	// Fatal logs and terminates the process with a non-zero exit code.
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

package logging

import (
	"fmt"
	"log"
	"os"
)

const (
	calldepth = 3
	lvlInfo   = "INFO"
	lvlWarn   = "WARN"
	lvlError  = "ERROR"
	lvlDebug  = "DEBUG"
	lvlFatal  = "FATAL"
)

// DefaultLogger is the stdlib-log-backed Logger used when no --log-backend
// is selected. It mirrors the teacher's own DefaultLogger: a leveled prefix
// in front of every line, debug output gated behind a runtime flag.
type DefaultLogger struct {
	*log.Logger
	debug bool
}

// NewDefaultLogger builds a DefaultLogger writing to stderr.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		Logger: log.New(os.Stderr, "spantree ", log.LstdFlags),
		debug:  false,
	}
}

func level(prefix, message string) string {
	return fmt.Sprintf("[%s] %s", prefix, message)
}

func (l *DefaultLogger) Info(v ...interface{}) {
	_ = l.Output(calldepth, level(lvlInfo, fmt.Sprint(v...)))
}

func (l *DefaultLogger) Infof(format string, v ...interface{}) {
	_ = l.Output(calldepth, level(lvlInfo, fmt.Sprintf(format, v...)))
}

func (l *DefaultLogger) Warn(v ...interface{}) {
	_ = l.Output(calldepth, level(lvlWarn, fmt.Sprint(v...)))
}

func (l *DefaultLogger) Warnf(format string, v ...interface{}) {
	_ = l.Output(calldepth, level(lvlWarn, fmt.Sprintf(format, v...)))
}

func (l *DefaultLogger) Error(v ...interface{}) {
	_ = l.Output(calldepth, level(lvlError, fmt.Sprint(v...)))
}

func (l *DefaultLogger) Errorf(format string, v ...interface{}) {
	_ = l.Output(calldepth, level(lvlError, fmt.Sprintf(format, v...)))
}

func (l *DefaultLogger) Debug(v ...interface{}) {
	if l.debug {
		_ = l.Output(calldepth, level(lvlDebug, fmt.Sprint(v...)))
	}
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		_ = l.Output(calldepth, level(lvlDebug, fmt.Sprintf(format, v...)))
	}
}

func (l *DefaultLogger) ToggleDebug(enabled bool) bool {
	l.debug = enabled
	return l.debug
}

func (l *DefaultLogger) Fatal(v ...interface{}) {
	_ = l.Output(calldepth, level(lvlFatal, fmt.Sprint(v...)))
	os.Exit(1)
}

func (l *DefaultLogger) Fatalf(format string, v ...interface{}) {
	_ = l.Output(calldepth, level(lvlFatal, fmt.Sprintf(format, v...)))
	os.Exit(1)
}

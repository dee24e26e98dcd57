package logging

import (
	plog "github.com/prometheus/common/log"
)

// PrometheusLogger adapts the prometheus/common/log package-level logger to
// the Logger interface. This mirrors the teacher's own transport layer,
// which logs directly through prometheus/common/log.
type PrometheusLogger struct {
	debug bool
}

// NewPrometheusLogger builds a PrometheusLogger.
func NewPrometheusLogger() *PrometheusLogger {
	return &PrometheusLogger{}
}

func (l *PrometheusLogger) Info(v ...interface{})                  { plog.Info(v...) }
func (l *PrometheusLogger) Infof(format string, v ...interface{})  { plog.Infof(format, v...) }
func (l *PrometheusLogger) Warn(v ...interface{})                  { plog.Warn(v...) }
func (l *PrometheusLogger) Warnf(format string, v ...interface{})  { plog.Warnf(format, v...) }
func (l *PrometheusLogger) Error(v ...interface{})                 { plog.Error(v...) }
func (l *PrometheusLogger) Errorf(format string, v ...interface{}) { plog.Errorf(format, v...) }
func (l *PrometheusLogger) Fatal(v ...interface{})                 { plog.Fatal(v...) }
func (l *PrometheusLogger) Fatalf(format string, v ...interface{}) { plog.Fatalf(format, v...) }

func (l *PrometheusLogger) Debug(v ...interface{}) {
	if l.debug {
		plog.Debug(v...)
	}
}

func (l *PrometheusLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		plog.Debugf(format, v...)
	}
}

func (l *PrometheusLogger) ToggleDebug(enabled bool) bool {
	l.debug = enabled
	return l.debug
}

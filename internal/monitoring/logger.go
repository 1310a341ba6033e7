// Package monitoring holds the process-wide diagnostic logger and progress
// reporting used by the batch stages.
package monitoring

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var current atomic.Pointer[log.Logger]

func init() {
	current.Store(NewLogger(os.Stderr, log.InfoLevel))
}

// NewLogger returns a timestamped logger writing to w at the given level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	current.Store(l)
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return current.Load()
}

// Logf logs at info level through the package logger.
func Logf(format string, v ...interface{}) {
	current.Load().Infof(format, v...)
}

// Debugf logs at debug level through the package logger.
func Debugf(format string, v ...interface{}) {
	current.Load().Debugf(format, v...)
}

// Warnf logs at warn level through the package logger.
func Warnf(format string, v ...interface{}) {
	current.Load().Warnf(format, v...)
}

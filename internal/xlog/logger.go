// Package xlog provides the ambient leveled logger used across netmux.
package xlog

import (
	"fmt"
	"os"
	"time"
)

// Logger prints timestamped, leveled messages to stderr. Info and Debug are
// gated behind their respective flags; Warn and Error always print.
type Logger struct {
	Verbose bool
	Debug   bool
}

func New(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, Debug: debug}
}

func (l *Logger) stamp() string {
	return time.Now().Format("15:04:05.000")
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil || !l.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "[INFO] %s: %s\n", l.stamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || !l.Debug {
		return
	}
	fmt.Fprintf(os.Stderr, "[DEBUG] %s: %s\n", l.stamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[WARN] %s: %s\n", l.stamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] %s: %s\n", l.stamp(), fmt.Sprintf(format, args...))
}

// Default is a package-level logger with Info/Debug off, matching the
// original's quiet-by-default behavior.
var Default = New(false, false)

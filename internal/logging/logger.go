package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger is a thin wrapper around the standard logger that adds a debug
// level. Debug output is dropped unless enabled at construction.
type Logger struct {
	*log.Logger
	debug bool
}

// Option configures a Logger
type Option func(*Logger)

// WithOutput sets the destination writer
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.SetOutput(w)
	}
}

// WithPrefix sets the line prefix, e.g. "[board] "
func WithPrefix(p string) Option {
	return func(l *Logger) {
		l.SetPrefix(p)
	}
}

// WithFlags sets the standard logger flags
func WithFlags(flag int) Option {
	return func(l *Logger) {
		l.SetFlags(flag)
	}
}

// WithDebug enables or disables debug output
func WithDebug(enabled bool) Option {
	return func(l *Logger) {
		l.debug = enabled
	}
}

// New creates a logger writing to stderr with date and time
func New(opts ...Option) *Logger {
	l := &Logger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard returns a logger that writes nowhere
func Discard() *Logger {
	return New(WithOutput(io.Discard))
}

// Named returns a copy sharing output and level with a different prefix
func (l *Logger) Named(prefix string) *Logger {
	return &Logger{
		Logger: log.New(l.Writer(), prefix, l.Flags()),
		debug:  l.debug,
	}
}

// DebugEnabled reports whether debug output is written
func (l *Logger) DebugEnabled() bool {
	return l.debug
}

// Debugf prints in the manner of fmt.Printf when debug is enabled
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	_ = l.Output(2, fmt.Sprintf(format, v...))
}

// Debug prints in the manner of fmt.Print when debug is enabled
func (l *Logger) Debug(v ...interface{}) {
	if !l.debug {
		return
	}
	_ = l.Output(2, fmt.Sprint(v...))
}

// IsDebugLevel reports whether a LOG_LEVEL value selects debug output
func IsDebugLevel(level string) bool {
	return strings.EqualFold(strings.TrimSpace(level), "debug")
}

// Package log writes leveled, categorized lines to the debug log file.
// A terminal UI owns stdout, so nothing is written unless Init was called
// (--debug or SPECBOARD_DEBUG). Every entry is also published to subscribers
// so the in-app log pane can follow along.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/specboard/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatNav       Category = "nav"       // view transitions
	CatHistory   Category = "history"   // history stack operations
	CatAPI       Category = "api"       // dashboard service requests
	CatDiff      Category = "diff"      // diff loading and rendering
	CatPoll      Category = "poll"      // auto refresh
	CatUI        Category = "ui"        // component updates
	CatConfig    Category = "config"    // configuration loading/saving
	CatCache     Category = "cache"     // cache hits and misses
	CatClipboard Category = "clipboard" // copy to clipboard
	CatTrace     Category = "trace"     // tracing setup
)

const timeFormat = "2006-01-02T15:04:05"

// Logger formats entries and fans them out.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	minLevel Level
	broker   *pubsub.Broker[string]
	now      func() time.Time
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

// Init opens path through tea.LogToFile and installs the global logger.
// The returned function closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "specboard")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := New(f)
	l.closer = f
	SetDefault(l)
	return func() {
		SetDefault(nil)
		l.Close()
	}, nil
}

// New returns a logger writing to w at debug level.
func New(w io.Writer) *Logger {
	return &Logger{
		writer:   w,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
		now:      time.Now,
	}
}

// SetDefault installs l as the package logger. nil disables logging.
func SetDefault(l *Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// Enabled reports whether a package logger is installed.
func Enabled() bool {
	return current() != nil
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetMinLevel drops entries below level.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Close stops the broker and closes the underlying file, if any.
func (l *Logger) Close() {
	l.broker.Close()
	if l.closer != nil {
		_ = l.closer.Close()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	if l := current(); l != nil {
		l.Log(level, cat, msg, fields...)
	}
}

// Log writes one entry.
// Format: 2026-10-14T10:45:00 [ERROR] [api] message key=value key2=value2
func (l *Logger) Log(level Level, cat Category, msg string, fields ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	entry := Format(l.now(), level, cat, msg, fields...)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.broker.Publish(pubsub.CreatedEvent, entry)
}

// Format renders an entry line, newline included. An odd trailing key is
// written as key=<missing>.
func Format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format(timeFormat), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// LogEvent is a published log entry.
type LogEvent = pubsub.Event[string]

// Listener follows published log entries from the update loop.
type Listener = pubsub.ContinuousListener[string]

// NewListener subscribes to the package logger. It returns nil when
// logging is off. The subscription ends when ctx is cancelled.
func NewListener(ctx context.Context) *Listener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker)
}


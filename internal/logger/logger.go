package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger writes colored level-tagged lines to the console and plain lines to an optional file.
type Logger struct {
	mu      sync.Mutex
	name    string
	level   Level
	console *log.Logger
	file    *log.Logger
	closer  io.Closer
}

func New(name string, level Level, w io.Writer) *Logger {
	return &Logger{
		name:    name,
		level:   level,
		console: log.New(w, "", log.LstdFlags),
	}
}

// AddFile mirrors every line into the file at path, appending.
func (l *Logger) AddFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		l.closer.Close()
	}
	l.file = log.New(f, "", log.LstdFlags)
	l.closer = f
	return nil
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console.SetOutput(w)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer, l.file = nil, nil
	return err
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	tag := levelColors[level].Sprint(levelNames[level])
	l.console.Printf("%s - %s - %s", l.name, tag, msg)
	if l.file != nil {
		l.file.Printf("%s - %s - %s", l.name, levelNames[level], msg)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

var std = New("FIRES", LevelInfo, os.Stdout)

// Default returns the process-wide logger used by the internal packages.
func Default() *Logger { return std }

func Debugf(format string, args ...interface{}) { std.logf(LevelDebug, format, args...) }
func Infof(format string, args ...interface{})  { std.logf(LevelInfo, format, args...) }
func Warnf(format string, args ...interface{})  { std.logf(LevelWarn, format, args...) }
func Errorf(format string, args ...interface{}) { std.logf(LevelError, format, args...) }

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a level name, case-insensitively. Unknown names yield
// fallback.
func ParseLevel(s string, fallback Level) Level {
	for level, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level
		}
	}
	return fallback
}

type Logger struct {
	mu            sync.RWMutex
	level         Level
	packageLevels map[string]Level
	backend       *logrus.Logger
}

var defaultLogger = New(INFO)

// New creates a logger writing text lines to stderr.
func New(level Level) *Logger {
	backend := logrus.New()
	backend.SetOutput(os.Stderr)
	backend.SetLevel(logrus.DebugLevel)
	backend.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableQuote:     true,
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})
	return &Logger{
		level:         level,
		packageLevels: map[string]Level{},
		backend:       backend,
	}
}

// SetLevel sets the global logger level
func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defaultLogger.level = level
	defaultLogger.mu.Unlock()
}

// SetPackageLevels sets per-component level overrides. Keys match the
// [component] prefix of messages (e.g. "dbus", "trash", "api").
func SetPackageLevels(levels map[string]Level) {
	defaultLogger.mu.Lock()
	defaultLogger.packageLevels = levels
	defaultLogger.mu.Unlock()
}

// SetOutput redirects the global logger, mostly for tests.
func SetOutput(w io.Writer) {
	defaultLogger.backend.SetOutput(w)
}

// extractComponent splits "[component] rest" into its two parts.
func extractComponent(msg string) (string, string) {
	if len(msg) < 3 || msg[0] != '[' {
		return "", msg
	}
	end := strings.IndexByte(msg[1:], ']')
	if end < 0 {
		return "", msg
	}
	return msg[1 : end+1], strings.TrimLeft(msg[end+2:], " ")
}

func (l *Logger) shouldLog(level Level, component string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if component != "" {
		if pkgLevel, ok := l.packageLevels[component]; ok {
			return level >= pkgLevel
		}
	}
	return level >= l.level
}

func (l *Logger) entry(component string) *logrus.Entry {
	if component == "" {
		return logrus.NewEntry(l.backend)
	}
	return l.backend.WithField("component", component)
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	component, text := extractComponent(msg)
	if level != FATAL && !l.shouldLog(level, component) {
		return
	}
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	e := l.entry(component)
	switch level {
	case DEBUG:
		e.Debug(text)
	case INFO:
		e.Info(text)
	case WARN:
		e.Warn(text)
	case ERROR:
		e.Error(text)
	case FATAL:
		e.Fatal(text)
	}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) { defaultLogger.log(DEBUG, msg, args...) }

// Info logs an info message
func Info(msg string, args ...interface{}) { defaultLogger.log(INFO, msg, args...) }

// Warn logs a warning message
func Warn(msg string, args ...interface{}) { defaultLogger.log(WARN, msg, args...) }

// Error logs an error message
func Error(msg string, args ...interface{}) { defaultLogger.log(ERROR, msg, args...) }

// Fatal logs a fatal message and exits with status 1.
func Fatal(msg string, args ...interface{}) { defaultLogger.log(FATAL, msg, args...) }

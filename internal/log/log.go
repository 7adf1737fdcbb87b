// Package log provides category-based structured logging for the engine.
// It wraps a logrus logger, attaching the category as a field and accepting
// variadic key/value pairs the same way for every level.
package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Category groups related log messages.
type Category string

const (
	CatExecutor  Category = "executor"  // expansion, batching and merge
	CatContainer Category = "container" // container calls and lifecycle
	CatRegistry  Category = "registry"  // registration and replacement
	CatCache     Category = "cache"     // cache hits, misses and eviction
	CatMapping   Category = "mapping"   // descriptor file loading
	CatConfig    Category = "config"    // configuration loading
)

var (
	mu  sync.RWMutex
	std = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true})

	return l
}

// Logger returns the underlying logrus logger.
func Logger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return std
}

// SetLogger replaces the underlying logger. A nil logger restores the default.
func SetLogger(l *logrus.Logger) {
	mu.Lock()
	defer mu.Unlock()

	if l == nil {
		l = newDefault()
	}

	std = l
}

// SetLevel parses and applies a level name such as "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	Logger().SetLevel(lvl)

	return nil
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	Logger().SetOutput(w)
}

// SetFormatter selects "text" or "json" output.
func SetFormatter(format string) error {
	switch format {
	case "", "text":
		Logger().SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		Logger().SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported log format %q (expected text or json)", format)
	}

	return nil
}

// For returns an entry pre-populated with the category field.
func For(cat Category) *logrus.Entry {
	return Logger().WithField("category", string(cat))
}

// Enabled reports whether messages at level would be emitted.
func Enabled(level logrus.Level) bool {
	return Logger().IsLevelEnabled(level)
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	emit(logrus.DebugLevel, cat, msg, fields)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	emit(logrus.InfoLevel, cat, msg, fields)
}

// Warn logs at warn level.
func Warn(cat Category, msg string, fields ...any) {
	emit(logrus.WarnLevel, cat, msg, fields)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	emit(logrus.ErrorLevel, cat, msg, fields)
}

func emit(level logrus.Level, cat Category, msg string, kv []any) {
	l := Logger()
	if !l.IsLevelEnabled(level) {
		return
	}

	l.WithFields(toFields(cat, kv)).Log(level, msg)
}

// toFields converts alternating key/value pairs into logrus fields.
// A trailing key without a value is recorded under "!BADKEY".
func toFields(cat Category, kv []any) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2+1)
	fields["category"] = string(cat)

	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}

		if i+1 >= len(kv) {
			fields["!BADKEY"] = key
			break
		}

		fields[key] = kv[i+1]
	}

	return fields
}

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled logger shared by the service. The printf-style helpers render the
// message and emit it through a JSON slog handler; L exposes the underlying
// *slog.Logger for structured key/value logging.

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	base  = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error).
// Unknown values fall back to info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error", "fatal":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w)
}

// L returns the structured logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debugf(format string, v ...interface{}) { L().Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { L().Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { L().Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { L().Error(fmt.Sprintf(format, v...)) }

func Fatalf(format string, v ...interface{}) {
	L().Error(fmt.Sprintf(format, v...), "fatal", true)
	os.Exit(1)
}

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	}
	return "info"
}

// Package logger is the process-wide leveled logger.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the logging level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// String returns the upper-case level tag used in log lines.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel maps a config value to a level. Unknown values mean Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

type sink struct {
	level  Level
	logger *log.Logger
	file   *os.File
}

var (
	mu     sync.RWMutex
	global *sink
)

// Init configures the global logger. With enabled false every call is a no-op.
// Without a file, or with console set, lines also go to stdout.
func Init(enabled bool, levelStr, logFile string, console bool) error {
	if !enabled {
		swap(nil)
		return nil
	}

	var writers []io.Writer
	var file *os.File
	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}
	if console || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	swap(&sink{
		level:  ParseLevel(levelStr),
		logger: log.New(io.MultiWriter(writers...), "", 0),
		file:   file,
	})
	return nil
}

// SetOutput sends log lines at or above level to w.
func SetOutput(w io.Writer, level Level) {
	swap(&sink{level: level, logger: log.New(w, "", 0)})
}

// Close releases the log file, if any, and disables logging.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	var err error
	if global != nil && global.file != nil {
		err = global.file.Close()
	}
	global = nil
	return err
}

func swap(s *sink) {
	mu.Lock()
	old := global
	global = s
	mu.Unlock()
	if old != nil && old.file != nil {
		_ = old.file.Close()
	}
}

func logf(level Level, format string, args ...interface{}) {
	mu.RLock()
	s := global
	mu.RUnlock()
	if s == nil || level < s.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	s.logger.Printf("[%s] [%s] %s", ts, level, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) { logf(Debug, format, args...) }

// Infof logs an info message.
func Infof(format string, args ...interface{}) { logf(Info, format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) { logf(Warn, format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { logf(Error, format, args...) }

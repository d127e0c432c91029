// Package logging builds the charmbracelet loggers albumdeck writes to.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a [log.Logger] writing to w with timestamps enabled. A nil
// writer means [os.Stderr].
func New(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "albumdeck",
	})
	logger.SetLevel(level)
	return logger
}

// OpenFile opens (appending) the log file at path, creating parent
// directories, and returns a logger on it with a close function.
func OpenFile(path string, level log.Level) (*log.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(file, level), file.Close, nil
}

// ParseLevel maps a level name to a [log.Level], defaulting to info for an
// empty string.
func ParseLevel(name string) (log.Level, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(trimmed))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger appends structured lines to .rulebind/logs/rulebind.log so binding
// diagnostics survive the process that produced them.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates (or reuses) the log file inside logDir.
func New(logDir string, level slog.Level) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "rulebind.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{Logger: newSlog(f, level), file: f}, nil
}

// NewWriter logs to w without owning it.
func NewWriter(w io.Writer, level slog.Level) *Logger {
	return &Logger{Logger: newSlog(w, level)}
}

func newSlog(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single info line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.Logger == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	l.Info(strings.TrimRight(line, "\n"))
}

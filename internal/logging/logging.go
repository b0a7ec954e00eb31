// Package logging builds the zerolog logger used by the outer surfaces.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Builder collects the logger settings before Make opens any file.
type Builder struct {
	writer io.Writer
	path   string
	level  zerolog.Level
	format string
}

// Log is a built logger and the file it writes to, if any.
type Log struct {
	Logger zerolog.Logger
	File   *os.File
}

// New returns a builder writing info-level console output to stderr.
func New() *Builder {
	return &Builder{writer: os.Stderr, level: zerolog.InfoLevel, format: "console"}
}

// FromPath appends log lines to path instead of the writer.
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromBuffer writes log lines to w.
func (b *Builder) FromBuffer(w io.Writer) *Builder {
	if w != nil {
		b.writer = w
	}
	return b
}

// WithLevel parses level ("debug", "info", "warn", ...). Unknown levels keep
// the current one.
func (b *Builder) WithLevel(level string) *Builder {
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && parsed != zerolog.NoLevel {
		b.level = parsed
	}
	return b
}

// WithFormat selects "console" or "json" output.
func (b *Builder) WithFormat(format string) *Builder {
	if format != "" {
		b.format = strings.ToLower(format)
	}
	return b
}

// Make opens the log file when a path is set and builds the logger.
func (b *Builder) Make() (*Log, error) {
	out := &Log{}
	writer := b.writer
	if b.path != "" {
		file, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", b.path, err)
		}
		out.File = file
		writer = zerolog.SyncWriter(file)
	}

	switch b.format {
	case "console":
		if out.File == nil {
			writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}
		}
	case "json":
	default:
		out.Close()
		return nil, fmt.Errorf("logging: unknown format %q", b.format)
	}

	out.Logger = zerolog.New(writer).Level(b.level).With().Timestamp().Logger()
	return out, nil
}

// Close closes the log file.
func (l *Log) Close() error {
	if l == nil || l.File == nil {
		return nil
	}
	return l.File.Close()
}

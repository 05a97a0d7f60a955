package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterFactory builds output writers for the configured log format.
type WriterFactory struct{}

// NewWriterFactory creates a new writer factory
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{}
}

// CreateConsoleWriter creates a stderr writer in the given format
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	return wf.formatted(format, os.Stderr, false)
}

// CreateFileWriter creates a file writer with rotation
func (wf *WriterFactory) CreateFileWriter(config LoggerConfig) io.Writer {
	// Ensure directory exists; fall back to the raw path if creation fails
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return &lumberjack.Logger{Filename: config.FilePath}
	}

	rotated := &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: config.MaxBackups,
	}

	// Console colors are meaningless in a rotated file
	return wf.formatted(config.Format, rotated, true)
}

// formatted wraps output for the requested format. JSON entries are written
// raw; console and text share zerolog's human-readable ConsoleWriter, with
// text always uncolored.
func (wf *WriterFactory) formatted(format LogFormat, output io.Writer, noColor bool) io.Writer {
	switch format {
	case FormatJSON:
		return output
	case FormatText:
		noColor = true
	}
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log constructs the structured logger every bitmark-go binary
// writes through: a colorized console writer plus an optional rolling
// file sink.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Disabled discards everything written to it, for use in tests that don't
// care about log output.
var Disabled = zerolog.Nop()

// Config controls where and how a logger writes.
type Config struct {
	// Dir is the directory rolling log files are written into. Ignored
	// when FileLoggingEnabled is false.
	Dir string
	// FileLoggingEnabled turns on the rolling file sink alongside the
	// console writer.
	FileLoggingEnabled bool
	// Filename is the log file's name inside Dir.
	Filename string
	// MaxSizeMB is the file size, in megabytes, a log file is rolled at.
	MaxSizeMB int
	// MaxBackups is the number of rolled files kept.
	MaxBackups int
	// MaxAgeDays is how long a rolled file is kept before deletion.
	MaxAgeDays int
}

// DefaultConfig returns the out-of-the-box file-sink settings; callers
// still opt into FileLoggingEnabled explicitly.
func DefaultConfig() Config {
	return Config{
		Filename:   "minerd.log",
		MaxSizeMB:  150,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// levelFromName parses the same level names config.Config's DebugLevel
// accepts into a zerolog.Level, falling back to info on anything
// unrecognized.
func levelFromName(name string) zerolog.Level {
	switch name {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "critical":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger for unit (the component name stamped into every
// console line) at the named level, with File logging switched on per
// config.
func New(unit string, levelName string, config Config) zerolog.Logger {
	level := levelFromName(levelName)

	console := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false, TimeFormat: time.RFC3339}
	console.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s| %s |", i, unit))
	}
	console.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%-6s  ", i)
	}

	writers := []io.Writer{console}
	if config.FileLoggingEnabled {
		if w := newRollingFile(config); w != nil {
			writers = append(writers, w)
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Str("app", "minerd").
		Timestamp().
		Logger()
}

func newRollingFile(config Config) io.Writer {
	if err := os.MkdirAll(config.Dir, 0744); err != nil {
		fmt.Fprintf(os.Stderr, "can't create log directory %s: %v\n", config.Dir, err)
		return nil
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.Dir, config.Filename),
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
	}
}

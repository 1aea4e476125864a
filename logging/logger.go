// logging/logger.go

// Package logging builds the zerolog loggers handed to every component.
// Nothing in this module logs through a package-level logger; callers pass
// a zerolog.Logger down explicitly.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls where and how log lines are written.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is console or json.
	Format string `yaml:"format"`
	// File, when set, receives a copy of every log line (truncated on start).
	File string `yaml:"file"`
	// NoColor disables color in console output.
	NoColor bool `yaml:"no_color"`
}

func DefaultConfig() Config {
	return Config{
		Level:   "debug",
		Format:  "console",
		File:    "dataset_doc.log",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// New creates a logger writing to stdout and, if configured, to a log file.
// The returned closer releases the file and is never nil.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	return newWithStdout(cfg, os.Stdout)
}

func newWithStdout(cfg Config, stdout io.Writer) (zerolog.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	writers := []io.Writer{formatWriter(cfg, stdout, cfg.NoColor)}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		closer = f
		writers = append(writers, formatWriter(cfg, f, true))
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

func formatWriter(cfg Config, out io.Writer, noColor bool) io.Writer {
	if strings.ToLower(cfg.Format) == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Package log provides structured logging for xrplpers.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers.
var (
	NFT     zerolog.Logger
	Storage zerolog.Logger
	Verify  zerolog.Logger
	Config  zerolog.Logger
)

func init() {
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init replaces the global logger. When file is non-empty, logs go to both
// stderr (console or JSON per jsonOutput) and the file, which always gets
// JSON. Returns an error for an unknown level or an unwritable file.
func Init(level string, jsonOutput bool, file string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var console io.Writer = os.Stderr
	if !jsonOutput {
		console = consoleWriter(os.Stderr)
	}

	out := console
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
	}

	Logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	initComponentLoggers()
	return nil
}

// SetLogger installs l as the global logger, e.g. a test writer.
func SetLogger(l zerolog.Logger) {
	Logger = l
	initComponentLoggers()
}

// NewConsoleLogger creates a human-readable console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(consoleWriter(w)).
		Level(levelOrInfo(level)).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(levelOrInfo(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel accepts debug, info, warn, error and disabled (any case).
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func levelOrInfo(level string) zerolog.Level {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

func initComponentLoggers() {
	NFT = WithComponent("nft")
	Storage = WithComponent("storage")
	Verify = WithComponent("verify")
	Config = WithComponent("config")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// WithAccount returns a logger tagged with the tracked owner account.
func WithAccount(l zerolog.Logger, account string) zerolog.Logger {
	return l.With().Str("account", account).Logger()
}

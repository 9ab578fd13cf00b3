package gxml

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Format selects a log output encoding for NewLogger: text and json,
// the two encodings slog's stdlib handlers natively cover.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, defaulting to FormatText on an
// empty string and failing on anything unrecognized.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("gxml: unknown log format %q", s)
	}
}

// ParseLevel parses a level name into an slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("gxml: unknown log level %q", s)
	}
}

// NewLogger builds an slog.Logger writing to w in the given format at
// the given level. Parser/Decoder instances accept any *slog.Logger
// via WithLogger; this constructor exists so CLI front ends (see
// cmd/gxml) can build one from flag strings without reaching past
// this package into log/slog handler construction directly.
func NewLogger(w io.Writer, format Format, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// LogConfig holds CLI flag values for log configuration, registered
// through RegisterFlags and resolved through NewLoggerFromConfig.
type LogConfig struct {
	Level  string
	Format string
}

// RegisterFlags adds --log-level and --log-format flags to flags,
// writing into c.
func (c *LogConfig) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&c.Format, "log-format", "text", "log format: text, json")
}

// NewLoggerFromConfig resolves c's flag values into a logger writing to w.
func (c *LogConfig) NewLoggerFromConfig(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return NewLogger(w, format, level), nil
}

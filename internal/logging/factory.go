package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatSlog = "slog"
	FormatZap  = "zap"
)

// Options selects and tunes a Logger implementation.
type Options struct {
	Format string // "slog" (default) or "zap"
	Level  string // debug, info, warn, error
	JSON   bool   // slog only: JSON handler instead of text
	Output io.Writer
}

// New builds a Logger from opts.
func New(opts Options) (Logger, error) {
	switch strings.ToLower(opts.Format) {
	case "", FormatSlog:
		return newSlog(opts), nil
	case FormatZap:
		return newZap(opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

func newSlog(opts Options) *SlogLogger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: slogLevel(opts.Level)}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(opts.Output, hopts)
	} else {
		h = slog.NewTextHandler(opts.Output, hopts)
	}
	return NewSlogLogger(slog.New(h))
}

func newZap(opts Options) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(defaultLevel(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}

	if opts.Output != nil {
		core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(opts.Output), cfg.Level)
		return NewZapLogger(zap.New(core).Sugar()), nil
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return NewZapLogger(l.Sugar()), nil
}

func defaultLevel(level string) string {
	if level == "" {
		return "info"
	}
	return strings.ToLower(level)
}

func slogLevel(level string) slog.Level {
	switch defaultLevel(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

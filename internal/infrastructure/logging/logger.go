package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrescamacho/seafaring-go/internal/infrastructure/config"
)

// Logger is the structured logging port shared by the scheduler and adapters
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// ZerologLogger implements Logger on top of rs/zerolog
type ZerologLogger struct {
	log    zerolog.Logger
	closer io.Closer
}

// New builds a logger from the logging section of the configuration
func New(cfg config.LoggingConfig) (*ZerologLogger, error) {
	var out io.Writer
	var closer io.Closer
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: cfg.Output == "file"}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.IncludeCaller {
		ctx = ctx.Caller()
	}

	return &ZerologLogger{log: ctx.Logger(), closer: closer}, nil
}

// NewWithWriter builds a JSON logger writing to w, used by tests and tools
func NewWithWriter(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &ZerologLogger{log: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// With returns a logger that adds component to every entry
func (l *ZerologLogger) With(component string) *ZerologLogger {
	return &ZerologLogger{log: l.log.With().Str("component", component).Logger(), closer: l.closer}
}

// Log writes one entry. Metadata keys are emitted in sorted order.
func (l *ZerologLogger) Log(level, message string, metadata map[string]interface{}) {
	ev := l.event(level)
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev = ev.Interface(k, metadata[k])
	}
	ev.Msg(message)
}

func (l *ZerologLogger) event(level string) *zerolog.Event {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return l.log.Debug()
	case "WARN", "WARNING":
		return l.log.Warn()
	case "ERROR":
		return l.log.Error()
	default:
		return l.log.Info()
	}
}

// Close releases the log file, if any
func (l *ZerologLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// NoOp returns a logger that discards everything
func NoOp() Logger {
	return &noOpLogger{}
}

type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {}

type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns a no-op logger if not found
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return &noOpLogger{}
}

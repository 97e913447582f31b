// Package logger provides structured logging for tokmint.
//
// It wraps log/slog with a small interface and redacts key material and
// minted tokens before they reach the output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	Level     string    `koanf:"level"`      // debug, info, warn or error
	Format    string    `koanf:"format"`     // json or text
	Output    io.Writer `koanf:"-"`          // nil means os.Stderr
	AddSource bool      `koanf:"add_source"` // include file:line
}

// DefaultConfig returns JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// levels maps accepted level names. "warning" is an alias.
var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func lookupLevel(name string) (slog.Level, bool) {
	lvl, ok := levels[strings.ToLower(name)]
	return lvl, ok
}

// ValidLevel reports whether name is a level New understands.
func ValidLevel(name string) bool {
	_, ok := lookupLevel(name)
	return ok
}

// level is shared by every logger New returns, so SetLevel reaches
// loggers already handed out.
var level slog.LevelVar

// SetLevel sets the process log level. Unknown names select info. The
// config watcher calls it when log.level changes on disk.
func SetLevel(name string) {
	lvl, ok := lookupLevel(name)
	if !ok {
		lvl = slog.LevelInfo
	}
	level.Set(lvl)
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// New builds a logger from cfg and applies cfg.Level process-wide.
func New(cfg Config) (Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     &level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	SetLevel(cfg.Level)
	return &entry{sl: slog.New(h), ctx: context.Background()}, nil
}

// entry is the slog-backed Logger. ctx is passed to the handler on every
// record.
type entry struct {
	sl  *slog.Logger
	ctx context.Context
}

func (e *entry) Debug(msg string, args ...any) { e.sl.Log(e.ctx, slog.LevelDebug, msg, args...) }
func (e *entry) Info(msg string, args ...any)  { e.sl.Log(e.ctx, slog.LevelInfo, msg, args...) }
func (e *entry) Warn(msg string, args ...any)  { e.sl.Log(e.ctx, slog.LevelWarn, msg, args...) }
func (e *entry) Error(msg string, args ...any) { e.sl.Log(e.ctx, slog.LevelError, msg, args...) }

func (e *entry) With(args ...any) Logger {
	return &entry{sl: e.sl.With(args...), ctx: e.ctx}
}

func (e *entry) WithContext(ctx context.Context) Logger {
	return &entry{sl: e.sl, ctx: ctx}
}

// Discard returns a logger that drops everything regardless of level.
func Discard() Logger {
	return &entry{sl: slog.New(slog.DiscardHandler), ctx: context.Background()}
}

// Slog exposes the *slog.Logger behind l, for libraries that take one.
// Loggers from other packages get slog.Default().
func Slog(l Logger) *slog.Logger {
	if e, ok := l.(*entry); ok {
		return e.sl
	}
	return slog.Default()
}

var std atomic.Pointer[entry]

func init() {
	l, _ := New(DefaultConfig())
	std.Store(l.(*entry))
}

// SetDefault replaces the process logger. Loggers not built by New are
// ignored.
func SetDefault(l Logger) {
	if e, ok := l.(*entry); ok {
		std.Store(e)
	}
}

// Default returns the process logger.
func Default() Logger { return std.Load() }

// Debug logs through Default.
func Debug(msg string, args ...any) { std.Load().Debug(msg, args...) }

// Info logs through Default.
func Info(msg string, args ...any) { std.Load().Info(msg, args...) }

// Warn logs through Default.
func Warn(msg string, args ...any) { std.Load().Warn(msg, args...) }

// Error logs through Default.
func Error(msg string, args ...any) { std.Load().Error(msg, args...) }

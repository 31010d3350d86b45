package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	output   io.Writer = os.Stderr
	outputMu sync.RWMutex
)

// dynamicWriter 每次写入时查找当前输出目标
type dynamicWriter struct{}

func (dynamicWriter) Write(p []byte) (int, error) {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()
	return w.Write(p)
}

func newHandler(subsystem string, level *slog.LevelVar, cfg *Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "ts"
			case slog.LevelKey:
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelToString(lvl))
				}
			}
			return a
		},
	}

	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(dynamicWriter{}, opts)
	} else {
		h = slog.NewTextHandler(dynamicWriter{}, opts)
	}
	return h.WithAttrs([]slog.Attr{slog.String("subsystem", subsystem)})
}

func levelToString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// DiscardHandler 返回丢弃所有记录的 Handler
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

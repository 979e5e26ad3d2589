// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

type contextKey struct{}

// New builds a logger writing to w in the given level and format ("json" or
// "text").
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs a logger built from cfg as the slog default. Logs go to
// stderr so that stdout stays reserved for query results.
func Setup(cfg config.LoggingConfig) *slog.Logger {
	l := New(cfg.Level, cfg.Format, os.Stderr)
	slog.SetDefault(l)
	return l
}

// WithQueryID tags ctx with the id of the query being served.
func WithQueryID(ctx context.Context, queryID string) context.Context {
	return context.WithValue(ctx, contextKey{}, queryID)
}

func QueryID(ctx context.Context) (string, bool) {
	queryID, ok := ctx.Value(contextKey{}).(string)
	return queryID, ok
}

// FromContext returns the default logger, carrying the query id of ctx if
// one was attached.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if queryID, ok := QueryID(ctx); ok {
		l = l.With("query_id", queryID)
	}
	return l
}

func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

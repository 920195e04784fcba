// Package observability holds the process-wide logger, the prometheus
// collectors and the otel tracer used by the store and service layers.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide structured logger.
var Logger = slog.New(&ctxHandler{slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})})

type LogContextKey string

// CorrelationIDKey carries the id that ties all log lines of one unit of work together.
const CorrelationIDKey LogContextKey = "correlation_id"

// ctxHandler adds context values to every record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := ExtractCorrelationID(ctx); id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// InitLogger replaces Logger: JSON output in production, text otherwise.
func InitLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(&ctxHandler{handler})
	return Logger
}

func parseLevel(level string) slog.Level {
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

// WithCorrelationID tags ctx so every record logged with it carries id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// RepoLogger provides structured logging for store mutations.
type RepoLogger struct {
	table string
}

func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

// LogMutation logs a successful write.
func (l *RepoLogger) LogMutation(ctx context.Context, operation string, attrs ...any) {
	base := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	Logger.InfoContext(ctx, "repository "+operation, append(base, attrs...)...)
}

// LogError logs a failed store operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	Logger.LogAttrs(ctx, slog.LevelError, "repository "+operation+" failed",
		slog.String("table", l.table), slog.String("operation", operation), slog.Any("error", err))
}

// Package observability provides structured logging for the client engine.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a Logger writing JSON records to stdout.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{Logger: slog.New(&ctxHandler{handler})}
}

// NewTextLogger returns a Logger with human-readable output for local use.
func NewTextLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{Logger: slog.New(&ctxHandler{handler})}
}

type contextKey string

// CorrelationIDKey is the context key carrying the correlation ID.
const CorrelationIDKey contextKey = "correlation_id"

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
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

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger provides structured logging for outgoing API requests.
type RequestLogger struct {
	component string
	logger    *Logger
}

// NewRequestLogger creates a RequestLogger for the given component.
func NewRequestLogger(component string, logger *Logger) *RequestLogger {
	return &RequestLogger{component: component, logger: logger}
}

// LogRequest logs an outgoing request.
func (l *RequestLogger) LogRequest(ctx context.Context, method, url string) {
	l.logger.InfoContext(ctx, "outgoing request",
		slog.String("component", l.component),
		slog.String("method", method),
		slog.String("url", url),
	)
}

// LogResponse logs a completed request with its status.
func (l *RequestLogger) LogResponse(ctx context.Context, method, url string, status int) {
	l.logger.InfoContext(ctx, "response received",
		slog.String("component", l.component),
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", status),
	)
}

// LogError logs a failed request.
func (l *RequestLogger) LogError(ctx context.Context, method, url string, err error) {
	l.logger.ErrorContext(ctx, "request failed",
		slog.String("component", l.component),
		slog.String("method", method),
		slog.String("url", url),
		slog.String("error", err.Error()),
	)
}

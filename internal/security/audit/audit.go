package audit

import (
	"context"
	"log/slog"
	"time"
)

type requestIDKey struct{}

// WithRequestID stores the request ID so audit records can correlate.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Logger writes structured audit records for security-relevant actions:
// logins, registrations and catalog mutations.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, actor, action, resource, resourceID, status, details string) {
	requestID := ""
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		requestID = v
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("actor", actor),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogMutation(ctx context.Context, actor, action, productID, status string) {
	al.LogAction(ctx, actor, action, "product", productID, status, "")
}

func (al *Logger) LogDenied(ctx context.Context, actor, reason string) {
	al.LogAction(ctx, actor, "access_denied", "api", "", "denied", reason)
}

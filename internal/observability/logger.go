package observability

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// global logger, JSON to stdout.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func Logger() *slog.Logger {
	return logger
}

// WithRequestID stores a request_id in the context so every log line of a
// turn can be correlated.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// LoggerFromContext returns the logger, tagged with the request_id if the
// context carries one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

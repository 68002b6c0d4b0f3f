package http

import (
	"context"
	"log/slog"

	"github.com/example/frontdesk-console/internal/logging"
)

// The request logger travels in the context; these aliases keep handler code
// free of a second import.
var (
	ContextWithLogger = logging.ContextWithLogger
	LoggerFromContext = logging.FromContext
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = fallback
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

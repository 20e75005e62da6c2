// Package logger is the process-wide structured logger, built on log/slog.
//
// Handlers and services log through WithCtx so every line carries the
// request ID and, once authenticated, the user ID:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order", order.Number)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/krishi/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stdout, config.AppEnv())
	slog.SetDefault(L)
}

// New builds a logger for env: JSON in production, text otherwise.
func New(w io.Writer, env string) *slog.Logger {
	switch env {
	case "production", "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "test":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by the Logger and Authenticate
// middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// With adds attributes to the logger already in ctx and stores the result.
func With(ctx context.Context, args ...any) context.Context {
	return InjectLogger(ctx, WithCtx(ctx).With(args...))
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }

// Package logging defines a small structured-logging interface used across
// the project. The concrete implementation wraps log/slog; components only
// depend on the interface so tests can capture log events.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "refresh settled", "op", "auth.refresh", "outcome", "ok")
type Logger interface {
	// Debug logs fine-grained diagnostic events.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

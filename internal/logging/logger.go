// Package logging defines the structured-logging interface used by the upload
// engine, the host CLI and the signing service. The only implementation wraps
// log/slog; library code accepts a Logger and falls back to NewNop when the
// caller passes none.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "task admitted", "task_id", id, "mode", plan.Mode)
type Logger interface {
	// Debug logs high-volume diagnostics such as per-part completions.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

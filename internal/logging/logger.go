// Package logging holds the structured logger shared by the simplog server
// and client. SlogLogger is the production implementation; Nop discards.
package logging

import "context"

// Logger writes leveled records. Every call takes the request context and
// trailing key/value pairs:
//
//	log.Info(ctx, "employee created", "employee_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	// Error is used for failed operations only, never for rejected input.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}

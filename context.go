package notify

import (
	"context"
	"log/slog"
)

const raiseContextKey contextKey = iota

type raiseContextData struct {
	name    string
	raiseID string
	logger  *slog.Logger
}

// contextKey
type contextKey int

// ContextRaiseID returns the raise ID stored in the context, or "" when the
// context does not originate from a raise.
func ContextRaiseID(ctx context.Context) string {
	if d, ok := ctx.Value(raiseContextKey).(*raiseContextData); ok {
		return d.raiseID
	}
	return ""
}

// ContextEventName returns the name of the event being dispatched, or ""
// when the context does not originate from a raise.
func ContextEventName(ctx context.Context) string {
	if d, ok := ctx.Value(raiseContextKey).(*raiseContextData); ok {
		return d.name
	}
	return ""
}

// ContextLogger returns the raising event's logger, falling back to
// slog.Default().
func ContextLogger(ctx context.Context) *slog.Logger {
	if d, ok := ctx.Value(raiseContextKey).(*raiseContextData); ok && d.logger != nil {
		return d.logger
	}
	return slog.Default()
}

func contextWithRaise(ctx context.Context, name, raiseID string, l *slog.Logger) context.Context {
	return context.WithValue(ctx, raiseContextKey, &raiseContextData{
		name:    name,
		raiseID: raiseID,
		logger:  l,
	})
}

package notify

import "log/slog"

// eventConfig holds configuration shared by typed and dynamic events.
type eventConfig struct {
	name            string
	logger          *slog.Logger
	tracingEnabled  bool
	recoveryEnabled bool
	metricsEnabled  bool
	onError         func(error)
}

// newEventConfig creates a config with defaults and applies provided options.
func newEventConfig(opts ...Option) *eventConfig {
	c := &eventConfig{
		logger:          slog.Default(),
		tracingEnabled:  true,
		recoveryEnabled: true,
		metricsEnabled:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures an event at construction time.
type Option func(*eventConfig)

// WithName sets the event name used in logs, spans and metric attributes.
// Defaults to the owner's type name.
func WithName(name string) Option {
	return func(c *eventConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the event.
func WithLogger(l *slog.Logger) Option {
	return func(c *eventConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracing enables/disables OpenTelemetry tracing for raises.
// Default is true.
func WithTracing(enabled bool) Option {
	return func(c *eventConfig) {
		c.tracingEnabled = enabled
	}
}

// WithRecovery enables/disables panic recovery in callbacks.
// With recovery enabled a panicking callback is isolated: the panic is
// logged, reported to the error handler, and the broadcast continues with
// the remaining callbacks. With recovery disabled the panic propagates to
// the raising goroutine. Default is true; disable only for debugging.
func WithRecovery(enabled bool) Option {
	return func(c *eventConfig) {
		c.recoveryEnabled = enabled
	}
}

// WithMetrics enables/disables OpenTelemetry metrics for the event.
// Default is true.
func WithMetrics(enabled bool) Option {
	return func(c *eventConfig) {
		c.metricsEnabled = enabled
	}
}

// WithErrorHandler sets a callback invoked with the recovered error when a
// subscriber panics during dispatch. Only used while recovery is enabled.
func WithErrorHandler(fn func(error)) Option {
	return func(c *eventConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

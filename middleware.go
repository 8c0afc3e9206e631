package notify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Middleware wraps a callback to add behavior around delivery. Middleware is
// applied per subscription at Subscribe time, outermost first:
//
//	ev.Subscribe(cb, notify.WithMiddleware(notify.Filter[string](isImportant)))
type Middleware[T any] func(next Callback[T]) Callback[T]

// subscribeOptions holds per-subscription configuration.
type subscribeOptions[T any] struct {
	middleware []Middleware[T]
}

// SubscribeOption configures a single subscription.
type SubscribeOption[T any] func(*subscribeOptions[T])

func newSubscribeOptions[T any](opts ...SubscribeOption[T]) *subscribeOptions[T] {
	so := &subscribeOptions[T]{}
	for _, opt := range opts {
		opt(so)
	}
	return so
}

// WithMiddleware adds middleware to the subscription's delivery chain.
func WithMiddleware[T any](mw ...Middleware[T]) SubscribeOption[T] {
	return func(so *subscribeOptions[T]) {
		so.middleware = append(so.middleware, mw...)
	}
}

// Filter creates a middleware that delivers only payloads matching pred.
func Filter[T any](pred func(T) bool) Middleware[T] {
	return func(next Callback[T]) Callback[T] {
		return func(ctx context.Context, sender any, data T) {
			if pred(data) {
				next(ctx, sender, data)
			}
		}
	}
}

// Once creates a middleware that delivers at most one call across raises.
// The subscription itself stays registered but inert after the first
// delivery; unsubscribe the callback to release it.
func Once[T any]() Middleware[T] {
	var once sync.Once
	return func(next Callback[T]) Callback[T] {
		return func(ctx context.Context, sender any, data T) {
			once.Do(func() {
				next(ctx, sender, data)
			})
		}
	}
}

// RateLimit creates a middleware that throttles deliveries to this
// subscription with a token bucket. Wait blocks the raising goroutine, in
// line with the synchronous, unbounded broadcast semantics; if the raise
// context is cancelled while waiting the delivery is skipped.
//
// Example, at most 10 deliveries per second with bursts of 5:
//
//	limiter := rate.NewLimiter(10, 5)
//	ev.Subscribe(cb, notify.WithMiddleware(notify.RateLimit[string](limiter)))
func RateLimit[T any](limiter *rate.Limiter) Middleware[T] {
	return func(next Callback[T]) Callback[T] {
		return func(ctx context.Context, sender any, data T) {
			if err := limiter.Wait(ctx); err != nil {
				ContextLogger(ctx).Debug("rate limited delivery dropped",
					"event", ContextEventName(ctx),
					"error", err)
				return
			}
			next(ctx, sender, data)
		}
	}
}

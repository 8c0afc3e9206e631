package notify

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// NoPayload is the payload type for events that carry no data.
type NoPayload struct{}

// Callback is invoked for every dispatch of an Event[T]. The sender is
// always the event's bound owner, prepended before the payload. The context
// carries the raise ID and event name (see ContextRaiseID, ContextEventName).
type Callback[T any] func(ctx context.Context, sender any, data T)

// Source is the subscribe side of an event. Producers keep the *Event[T] in
// an unexported field and expose a Source[T] accessor, so consumers can
// register callbacks but never raise:
//
//	type Worker struct {
//	    done *notify.Event[string]
//	}
//
//	func (w *Worker) Done() notify.Source[string] { return w.done }
type Source[T any] interface {
	Subscribe(cb Callback[T], opts ...SubscribeOption[T]) error
	Unsubscribe(cb Callback[T])
	Subscribers() int
}

// subscriber pairs a possibly middleware-wrapped callback with the identity
// of the callback that was registered, so Unsubscribe can match the value
// the caller holds.
type subscriber[T any] struct {
	id uintptr
	cb Callback[T]
}

// Event is an owner-bound broadcast to a dynamic set of callbacks.
//
// An Event is created bound to exactly one owner and only that owner may
// raise it; see Raise. Subscribe, Unsubscribe and Raise are safe for
// concurrent use. Distinct events are fully independent and share no locks.
//
// The payload type is fixed at compile time, which replaces raise-time
// signature validation with type checking; use Dynamic for signatures
// configured at runtime.
type Event[T any] struct {
	name            string
	owner           any
	logger          *slog.Logger
	tracingEnabled  bool
	recoveryEnabled bool
	metricsEnabled  bool
	onError         func(error)

	raised     metric.Int64Counter
	delivered  metric.Int64Counter
	subscribed metric.Int64Counter

	mu   sync.Mutex
	subs []subscriber[T]
}

var _ Source[NoPayload] = (*Event[NoPayload])(nil)

// New creates an event bound to owner with an empty subscriber list.
//
// The owner must be non-nil and of a comparable type; in practice it is a
// pointer to the producer object. A nil or non-comparable owner is a
// constructor misuse and panics.
func New[T any](owner any, opts ...Option) *Event[T] {
	if owner == nil {
		panic("notify: event owner cannot be nil")
	}
	if !reflect.TypeOf(owner).Comparable() {
		panic("notify: event owner must be a comparable value")
	}
	c := newEventConfig(opts...)
	name := c.name
	if name == "" {
		name = fmt.Sprintf("%T", owner)
	}

	e := &Event[T]{
		name:            name,
		owner:           owner,
		logger:          c.logger.With("event", name),
		tracingEnabled:  c.tracingEnabled,
		recoveryEnabled: c.recoveryEnabled,
		metricsEnabled:  c.metricsEnabled,
		onError:         c.onError,
	}
	if e.metricsEnabled {
		meter := otel.Meter(instrumentationName)
		e.raised, _ = meter.Int64Counter("event.raised",
			metric.WithDescription("Total number of raises"))
		e.delivered, _ = meter.Int64Counter("event.delivered",
			metric.WithDescription("Total number of callback deliveries"))
		e.subscribed, _ = meter.Int64Counter("event.subscribed",
			metric.WithDescription("Total number of subscriptions"))
	}
	return e
}

func (e *Event[T]) String() string {
	return e.name
}

// Name returns the event name.
func (e *Event[T]) Name() string {
	return e.name
}

// Owner returns the object this event is bound to.
func (e *Event[T]) Owner() any {
	return e.owner
}

// Subscribers returns the number of currently registered callbacks.
func (e *Event[T]) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Subscribe appends cb to the subscriber list. Registering the same
// callback more than once is allowed and results in one delivery per
// registration. Returns a RegistrationError for a nil callback; a typed
// callback can never mismatch the signature, the compiler rejects it.
func (e *Event[T]) Subscribe(cb Callback[T], opts ...SubscribeOption[T]) error {
	if cb == nil {
		return &RegistrationError{Event: e.name, Reason: "callback must not be nil"}
	}
	so := newSubscribeOptions(opts...)
	wrapped := cb
	for i := len(so.middleware) - 1; i >= 0; i-- {
		wrapped = so.middleware[i](wrapped)
	}
	e.mu.Lock()
	e.subs = append(e.subs, subscriber[T]{id: callbackKey(cb), cb: wrapped})
	n := len(e.subs)
	e.mu.Unlock()

	if e.metricsEnabled {
		e.subscribed.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String(attrKeyEventName, e.name)))
	}
	e.logger.Debug("subscribed callback", "subscribers", n)
	return nil
}

// Unsubscribe removes the first registered occurrence of cb, matched by
// function identity, and leaves later duplicates registered. Unsubscribing
// a callback that is not registered is a silent no-op.
//
// A callback removed while a raise is in flight still receives that raise:
// dispatch works against the snapshot taken when the raise started.
func (e *Event[T]) Unsubscribe(cb Callback[T]) {
	if cb == nil {
		return
	}
	key := callbackKey(cb)
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.subs {
		if e.subs[i].id == key {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			e.logger.Debug("unsubscribed callback", "subscribers", len(e.subs))
			return
		}
	}
}

// Clear removes all registered callbacks.
func (e *Event[T]) Clear() {
	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()
}

// Raise broadcasts data to every currently registered callback,
// synchronously and in registration order, passing the owner as the first
// argument.
//
// Presenting the owner reference is the ownership proof: sender must be
// identical to the bound owner or Raise returns an InvocationError without
// dispatching. The subscriber list is snapshotted under the lock and
// dispatch runs outside it, so callbacks may freely subscribe, unsubscribe
// or raise other events; mutations are visible on the next raise, not the
// current one. A slow callback stalls the raising goroutine; there is no
// timeout.
func (e *Event[T]) Raise(ctx context.Context, sender any, data T) error {
	if !identical(sender, e.owner) {
		return &InvocationError{Event: e.name, Reason: "event can only be raised by its owner"}
	}
	raiseID := NewID()
	if e.metricsEnabled {
		e.raised.Add(ctx, 1,
			metric.WithAttributes(attribute.String(attrKeyEventName, e.name)))
	}
	if e.tracingEnabled {
		tracer := otel.Tracer(instrumentationName)
		var span trace.Span
		ctx, span = tracer.Start(ctx, fmt.Sprintf("%s.raise", e.name),
			trace.WithAttributes(
				attribute.String(attrKeyEventName, e.name),
				attribute.String(attrKeyRaiseID, raiseID),
				attribute.String(attrKeyOwner, fmt.Sprintf("%T", e.owner))),
			trace.WithSpanKind(trace.SpanKindProducer))
		defer span.End()
	}
	ctx = contextWithRaise(ctx, e.name, raiseID, e.logger)

	e.mu.Lock()
	snapshot := make([]subscriber[T], len(e.subs))
	copy(snapshot, e.subs)
	e.mu.Unlock()

	for _, s := range snapshot {
		e.dispatch(ctx, s.cb, data)
	}
	return nil
}

// dispatch calls one callback, isolating panics when recovery is enabled.
func (e *Event[T]) dispatch(ctx context.Context, cb Callback[T], data T) {
	if e.recoveryEnabled {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("recovered callback panic",
					"error", r,
					"stack", string(debug.Stack()))
				if e.onError != nil {
					e.onError(fmt.Errorf("%w: callback panic: %v", ErrEvent, r))
				}
			}
		}()
	}
	cb(ctx, e.owner, data)
	if e.metricsEnabled {
		e.delivered.Add(ctx, 1,
			metric.WithAttributes(attribute.String(attrKeyEventName, e.name)))
	}
}

// Events groups several events of the same payload type so consumers can
// manage subscriptions across all of them at once.
type Events[T any] []*Event[T]

// Subscribe registers cb on every event in the group. On the first failure
// registration stops and the error is returned; events already subscribed
// keep the callback.
func (g Events[T]) Subscribe(cb Callback[T], opts ...SubscribeOption[T]) error {
	for _, e := range g {
		if err := e.Subscribe(cb, opts...); err != nil {
			return err
		}
	}
	return nil
}

// Unsubscribe removes cb from every event in the group.
func (g Events[T]) Unsubscribe(cb Callback[T]) {
	for _, e := range g {
		e.Unsubscribe(cb)
	}
}

// Clear removes all callbacks from every event in the group.
func (g Events[T]) Clear() {
	for _, e := range g {
		e.Clear()
	}
}

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

// dynamicSubscriber pairs a callback's reflect value with its identity key.
type dynamicSubscriber struct {
	id uintptr
	fn reflect.Value
}

// Dynamic is an owner-bound event whose payload signature is configured at
// runtime as an ordered sequence of types. Use Dynamic when the signature
// is not known at compile time, for example events declared from
// configuration or built by a Registry; otherwise prefer Event[T], which
// moves all signature checking to the compiler.
//
// Callbacks are plain funcs of the shape
//
//	func(sender OwnerType, arg0 T0, arg1 T1, ...)
//
// with one leading sender parameter followed by one parameter per signature
// entry. Arity and parameter types are validated structurally at Subscribe
// time; raise arguments are validated against the signature before any
// callback runs.
type Dynamic struct {
	name            string
	owner           any
	sig             Signature
	logger          *slog.Logger
	tracingEnabled  bool
	recoveryEnabled bool
	metricsEnabled  bool
	onError         func(error)

	raised     metric.Int64Counter
	delivered  metric.Int64Counter
	subscribed metric.Int64Counter

	mu   sync.Mutex
	subs []dynamicSubscriber
}

// NewDynamic creates a dynamically-signed event bound to owner with an
// empty subscriber list. A nil or empty signature means no payload. The
// owner must be non-nil and comparable, as with New.
func NewDynamic(owner any, sig Signature, opts ...Option) *Dynamic {
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

	// Private copy; the signature is immutable after construction.
	var own Signature
	if len(sig) > 0 {
		own = make(Signature, len(sig))
		copy(own, sig)
		for _, t := range own {
			if t == nil {
				panic("notify: signature types cannot be nil")
			}
		}
	}

	d := &Dynamic{
		name:            name,
		owner:           owner,
		sig:             own,
		logger:          c.logger.With("event", name),
		tracingEnabled:  c.tracingEnabled,
		recoveryEnabled: c.recoveryEnabled,
		metricsEnabled:  c.metricsEnabled,
		onError:         c.onError,
	}
	if d.metricsEnabled {
		meter := otel.Meter(instrumentationName)
		d.raised, _ = meter.Int64Counter("event.raised",
			metric.WithDescription("Total number of raises"))
		d.delivered, _ = meter.Int64Counter("event.delivered",
			metric.WithDescription("Total number of callback deliveries"))
		d.subscribed, _ = meter.Int64Counter("event.subscribed",
			metric.WithDescription("Total number of subscriptions"))
	}
	return d
}

func (d *Dynamic) String() string {
	return d.name
}

// Name returns the event name.
func (d *Dynamic) Name() string {
	return d.name
}

// Owner returns the object this event is bound to.
func (d *Dynamic) Owner() any {
	return d.owner
}

// Signature returns a copy of the declared payload signature.
func (d *Dynamic) Signature() Signature {
	if len(d.sig) == 0 {
		return nil
	}
	sig := make(Signature, len(d.sig))
	copy(sig, d.sig)
	return sig
}

// Subscribers returns the number of currently registered callbacks.
func (d *Dynamic) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Subscribe appends cb to the subscriber list, validating its shape against
// the signature first. cb must be a non-variadic func accepting the sender
// followed by one parameter per signature entry; anything else returns a
// RegistrationError and leaves the registry unmodified. Duplicate
// registrations are allowed.
func (d *Dynamic) Subscribe(cb any) error {
	if cb == nil {
		return &RegistrationError{Event: d.name, Reason: "callback must not be nil"}
	}
	v := reflect.ValueOf(cb)
	if v.Kind() != reflect.Func {
		return &RegistrationError{Event: d.name,
			Reason: fmt.Sprintf("callback must be a func, got %s", v.Kind())}
	}
	t := v.Type()
	if t.IsVariadic() {
		return &RegistrationError{Event: d.name, Reason: "variadic callbacks are not supported"}
	}
	want := len(d.sig) + 1
	if t.NumIn() != want {
		return &RegistrationError{Event: d.name, Want: want, Got: t.NumIn()}
	}
	ownerType := reflect.TypeOf(d.owner)
	if !ownerType.AssignableTo(t.In(0)) {
		return &RegistrationError{Event: d.name,
			Reason: fmt.Sprintf("sender parameter %s cannot accept owner %s", t.In(0), ownerType)}
	}
	for i, st := range d.sig {
		if !st.AssignableTo(t.In(i + 1)) {
			return &RegistrationError{Event: d.name,
				Reason: fmt.Sprintf("parameter %d is %s, want %s", i+1, t.In(i+1), st)}
		}
	}

	d.mu.Lock()
	d.subs = append(d.subs, dynamicSubscriber{id: v.Pointer(), fn: v})
	n := len(d.subs)
	d.mu.Unlock()

	if d.metricsEnabled {
		d.subscribed.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String(attrKeyEventName, d.name)))
	}
	d.logger.Debug("subscribed callback", "subscribers", n)
	return nil
}

// Unsubscribe removes the first registered occurrence of cb, matched by
// function identity, leaving later duplicates registered. Unsubscribing a
// callback that is not registered is a silent no-op.
func (d *Dynamic) Unsubscribe(cb any) {
	if cb == nil {
		return
	}
	v := reflect.ValueOf(cb)
	if v.Kind() != reflect.Func {
		return
	}
	key := v.Pointer()
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.subs {
		if d.subs[i].id == key {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			d.logger.Debug("unsubscribed callback", "subscribers", len(d.subs))
			return
		}
	}
}

// Clear removes all registered callbacks.
func (d *Dynamic) Clear() {
	d.mu.Lock()
	d.subs = nil
	d.mu.Unlock()
}

// Raise is RaiseContext with a background context.
func (d *Dynamic) Raise(sender any, args ...any) error {
	return d.RaiseContext(context.Background(), sender, args...)
}

// RaiseContext broadcasts args to every currently registered callback,
// synchronously and in registration order, passing the owner as the first
// argument. The context scopes tracing only; dynamic callbacks do not
// receive it.
//
// The sender must be identical to the bound owner (InvocationError) and the
// arguments must match the declared signature in count and type
// (InvalidSignatureError); both are checked before any callback runs, so a
// failed raise performs no partial dispatch. Snapshot semantics match
// Event[T].Raise.
func (d *Dynamic) RaiseContext(ctx context.Context, sender any, args ...any) error {
	if !identical(sender, d.owner) {
		return &InvocationError{Event: d.name, Reason: "event can only be raised by its owner"}
	}
	if err := d.sig.check(d.name, args); err != nil {
		return err
	}
	raiseID := NewID()
	if d.metricsEnabled {
		d.raised.Add(ctx, 1,
			metric.WithAttributes(attribute.String(attrKeyEventName, d.name)))
	}
	if d.tracingEnabled {
		tracer := otel.Tracer(instrumentationName)
		var span trace.Span
		ctx, span = tracer.Start(ctx, fmt.Sprintf("%s.raise", d.name),
			trace.WithAttributes(
				attribute.String(attrKeyEventName, d.name),
				attribute.String(attrKeyRaiseID, raiseID),
				attribute.String(attrKeyOwner, fmt.Sprintf("%T", d.owner))),
			trace.WithSpanKind(trace.SpanKindProducer))
		defer span.End()
	}

	in := make([]reflect.Value, len(args)+1)
	in[0] = reflect.ValueOf(d.owner)
	for i, arg := range args {
		if arg == nil {
			in[i+1] = reflect.Zero(d.sig[i])
			continue
		}
		in[i+1] = reflect.ValueOf(arg)
	}

	d.mu.Lock()
	snapshot := make([]dynamicSubscriber, len(d.subs))
	copy(snapshot, d.subs)
	d.mu.Unlock()

	for _, s := range snapshot {
		d.dispatch(ctx, s.fn, in)
	}
	return nil
}

func (d *Dynamic) dispatch(ctx context.Context, fn reflect.Value, in []reflect.Value) {
	if d.recoveryEnabled {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("recovered callback panic",
					"error", r,
					"stack", string(debug.Stack()))
				if d.onError != nil {
					d.onError(fmt.Errorf("%w: callback panic: %v", ErrEvent, r))
				}
			}
		}()
	}
	fn.Call(in)
	if d.metricsEnabled {
		d.delivered.Add(ctx, 1,
			metric.WithAttributes(attribute.String(attrKeyEventName, d.name)))
	}
}

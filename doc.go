// Package notify provides in-process, owner-bound typed events: one owning
// object broadcasts to a dynamic set of registered callbacks, and only the
// owner may raise the event.
//
// Architecture:
//   - Generic events with compile-time type safety: Event[T] fixes the
//     payload type so raise-time signature checking is a compile error
//   - Dynamic keeps runtime signature validation for events whose payload
//     types are configured at runtime
//   - Ownership is a capability: Raise requires presenting the bound owner,
//     and producers expose only the Source[T] subscribe side to consumers
//   - Dispatch is synchronous against a snapshot of the subscriber list,
//     taken under the event's lock and invoked outside it
//
// Basic example:
//
//	type Downloader struct {
//	    progress *notify.Event[int]
//	}
//
//	func NewDownloader() *Downloader {
//	    d := &Downloader{}
//	    d.progress = notify.New[int](d, notify.WithName("progress"))
//	    return d
//	}
//
//	// Consumers get the subscribe side only.
//	func (d *Downloader) Progress() notify.Source[int] { return d.progress }
//
//	func (d *Downloader) Run(ctx context.Context) {
//	    // ... work ...
//	    d.progress.Raise(ctx, d, 42)
//	}
//
//	dl := NewDownloader()
//	cb := func(ctx context.Context, sender any, pct int) {
//	    fmt.Printf("%v is %d%% done\n", sender, pct)
//	}
//	dl.Progress().Subscribe(cb)
//	defer dl.Progress().Unsubscribe(cb)
//
// Raising from anything that is not the bound owner fails with
// InvocationError and performs no dispatch:
//
//	ev := notify.New[string](owner)
//	err := ev.Raise(ctx, somethingElse, "payload") // InvocationError
//
// Dynamic signatures:
//
//	ev := notify.NewDynamic(owner, notify.NewSignature(reflect.TypeFor[string]()))
//	ev.Subscribe(func(sender any, msg string) { fmt.Println(msg) })
//	ev.Raise(owner, "hello")       // ok
//	ev.Raise(owner, 42)            // InvalidSignatureError
//	ev.Subscribe(func(sender any) {}) // RegistrationError: arity mismatch
//
// Named events via a per-producer Registry:
//
//	r := notify.NewRegistry(owner)
//	r.Declare("done", nil)
//	r.Subscribe("done", func(sender any) { fmt.Println("done") })
//	r.Raise("done")
//
// Event Options:
//   - WithName: set the event name used in logs, spans and metrics.
//   - WithLogger: set a custom slog logger.
//   - WithRecovery: enable/disable panic isolation per callback. Default true.
//   - WithTracing: enable/disable OpenTelemetry raise spans. Default true.
//   - WithMetrics: enable/disable OpenTelemetry counters. Default true.
//   - WithErrorHandler: observe recovered callback panics.
//
// Subscribe Options:
//   - WithMiddleware: wrap the callback with Filter, Once, RateLimit or
//     custom middleware.
//
// Dispatch semantics:
// Callbacks run synchronously on the raising goroutine, in registration
// order, each invoked as cb(ctx, owner, payload). A callback that
// subscribes or unsubscribes during dispatch takes effect on the next
// raise; the current raise works from its snapshot. A panicking callback is
// isolated (logged and reported to the error handler) and does not abort
// the broadcast. There is no timeout: a slow callback stalls the raiser.
//
// Error taxonomy:
// RegistrationError (incompatible callback), InvocationError (non-owner
// raise) and InvalidSignatureError (raise arguments vs signature) all
// unwrap to the base ErrEvent for coarse handling. All three are detected
// before any side effect.
package notify

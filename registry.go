package notify

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Registry is a named-event table an event-bearing type constructs for
// itself: the producer declares its events by name in its constructor and
// exposes the registry (or individual events) through accessor methods.
// Every declared event is a Dynamic bound to the registry's owner.
//
//	type Downloader struct {
//	    events *notify.Registry
//	}
//
//	func NewDownloader() *Downloader {
//	    d := &Downloader{}
//	    d.events = notify.NewRegistry(d)
//	    d.events.Declare("progress", notify.NewSignature(reflect.TypeFor[int]()))
//	    d.events.Declare("done", nil)
//	    return d
//	}
//
//	func (d *Downloader) Events() *notify.Registry { return d.events }
type Registry struct {
	owner  any
	opts   []Option
	logger *slog.Logger

	mu     sync.RWMutex
	events map[string]*Dynamic
}

// NewRegistry creates an empty registry for owner. The options are applied
// to every event the registry declares. Owner constraints match New.
func NewRegistry(owner any, opts ...Option) *Registry {
	if owner == nil {
		panic("notify: registry owner cannot be nil")
	}
	if !reflect.TypeOf(owner).Comparable() {
		panic("notify: registry owner must be a comparable value")
	}
	c := newEventConfig(opts...)
	return &Registry{
		owner:  owner,
		opts:   opts,
		logger: c.logger.With("component", fmt.Sprintf("registry>%T", owner)),
		events: make(map[string]*Dynamic),
	}
}

// Owner returns the object all declared events are bound to.
func (r *Registry) Owner() any {
	return r.owner
}

// Declare creates a new event under name with the given signature and
// returns it. Returns ErrDuplicateEvent if the name is already taken.
func (r *Registry) Declare(name string, sig Signature) (*Dynamic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateEvent, name)
	}
	ev := NewDynamic(r.owner, sig, append(r.opts[:len(r.opts):len(r.opts)], WithName(name))...)
	r.events[name] = ev
	r.logger.Debug("declared event", "event", name, "signature", sig.String())
	return ev, nil
}

// Event returns the declared event with the given name, or nil when the
// name was never declared.
func (r *Registry) Event(name string) *Dynamic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[name]
}

// Names returns the names of all declared events, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.events))
	for name := range r.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribe registers cb on the named event. Returns ErrUnknownEvent for
// undeclared names, or the event's own RegistrationError.
func (r *Registry) Subscribe(name string, cb any) error {
	ev := r.Event(name)
	if ev == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return ev.Subscribe(cb)
}

// Unsubscribe removes cb from the named event. A no-op for undeclared
// names, matching the tolerance for unsubscribing unregistered callbacks.
func (r *Registry) Unsubscribe(name string, cb any) {
	if ev := r.Event(name); ev != nil {
		ev.Unsubscribe(cb)
	}
}

// Raise raises the named event with the registry's owner as sender.
// Returns ErrUnknownEvent for undeclared names.
func (r *Registry) Raise(name string, args ...any) error {
	return r.RaiseContext(context.Background(), name, args...)
}

// RaiseContext is Raise with a caller-provided context for tracing.
func (r *Registry) RaiseContext(ctx context.Context, name string, args ...any) error {
	ev := r.Event(name)
	if ev == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return ev.RaiseContext(ctx, r.owner, args...)
}

// Close clears the callbacks of every declared event and empties the
// registry. The registry can be reused after Close, but normally it is
// discarded together with its owner.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		ev.Clear()
	}
	r.events = make(map[string]*Dynamic)
}

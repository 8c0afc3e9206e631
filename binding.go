package notify

import (
	"reflect"
	"sync"
)

// Binding lazily associates one private Event[T] with each owner instance,
// for event declarations that are shared across a type rather than created
// per instance in a constructor. The first For call for a given owner
// constructs that owner's event; later calls return the same instance.
//
//	var saved = notify.NewBinding[string](notify.WithName("saved"))
//
//	func (d *Document) Saved() *notify.Event[string] { return saved.For(d) }
//
// Embedding the event directly as a field initialized in the owner's
// constructor is simpler when you control the constructor; Binding exists
// for the cases where you don't.
type Binding[T any] struct {
	opts []Option

	mu     sync.Mutex
	events map[any]*Event[T]
}

// NewBinding creates an empty binding. The options are applied to every
// event it constructs.
func NewBinding[T any](opts ...Option) *Binding[T] {
	return &Binding[T]{
		opts:   opts,
		events: make(map[any]*Event[T]),
	}
}

// For returns the event bound to owner, constructing and caching it on
// first access. Owner constraints match New.
func (b *Binding[T]) For(owner any) *Event[T] {
	if owner == nil {
		panic("notify: event owner cannot be nil")
	}
	if !reflect.TypeOf(owner).Comparable() {
		panic("notify: event owner must be a comparable value")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if ev, ok := b.events[owner]; ok {
		return ev
	}
	ev := New[T](owner, b.opts...)
	b.events[owner] = ev
	return ev
}

// Forget drops the cached event for owner, releasing it and its subscriber
// list. Call when the owner is being discarded; a later For constructs a
// fresh event.
func (b *Binding[T]) Forget(owner any) {
	if owner == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, owner)
}

// Len returns the number of owners with a cached event.
func (b *Binding[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

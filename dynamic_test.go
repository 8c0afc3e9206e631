package notify

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"syreclabs.com/go/faker"
)

func TestDynamicRaise(t *testing.T) {
	owner := &producer{id: 20}
	ev := NewDynamic(owner, NewSignature(reflect.TypeOf((*string)(nil)).Elem()), WithName("update"))

	var gotSender any
	var gotPayload string
	cb := func(sender any, payload string) {
		gotSender = sender
		gotPayload = payload
	}
	if err := ev.Subscribe(cb); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	payload := faker.Lorem().String()
	if err := ev.Raise(owner, payload); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if gotSender != owner {
		t.Errorf("sender is wrong got:%v, expected:%v", gotSender, owner)
	}
	if !cmp.Equal(gotPayload, payload) {
		t.Errorf("diff : %v", cmp.Diff(gotPayload, payload))
	}
}

func TestDynamicSubscribeArity(t *testing.T) {
	owner := &producer{id: 21}
	ev := NewDynamic(owner, NewSignature(reflect.TypeOf((*string)(nil)).Elem()))

	var calls int32
	count := func(args ...any) {
		atomic.AddInt32(&calls, 1)
	}
	tests := []struct {
		name string
		cb   any
	}{
		{"nil", nil},
		{"not a func", "callback"},
		{"no sender", func() { count() }},
		{"sender only", func(sender any) { count() }},
		{"too many", func(sender any, a, b string) { count() }},
		{"variadic", func(sender any, args ...string) { count() }},
		{"wrong payload type", func(sender any, n int) { count() }},
		{"wrong sender type", func(sender *Registry, s string) { count() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ev.Subscribe(tt.cb)
			if !IsRegistration(err) {
				t.Fatalf("expected RegistrationError, got %v", err)
			}
			if !errors.Is(err, ErrEvent) {
				t.Error("registration error does not unwrap to ErrEvent")
			}
		})
	}
	if ev.Subscribers() != 0 {
		t.Fatalf("failed subscriptions modified registry: %d", ev.Subscribers())
	}

	// rejected callbacks are never called
	if err := ev.Raise(owner, "x"); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("rejected callback was called %d times", n)
	}
}

func TestDynamicRaiseSignatureMismatch(t *testing.T) {
	owner := &producer{id: 22}
	ev := NewDynamic(owner, NewSignature(reflect.TypeOf((*string)(nil)).Elem()), WithName("typed"))
	var calls int32
	if err := ev.Subscribe(func(sender any, s string) {
		atomic.AddInt32(&calls, 1)
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	tests := []struct {
		name string
		args []any
	}{
		{"too few", nil},
		{"too many", []any{"a", "b"}},
		{"wrong type", []any{42}},
		{"nil for string", []any{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ev.Raise(owner, tt.args...)
			if !IsInvalidSignature(err) {
				t.Fatalf("expected InvalidSignatureError, got %v", err)
			}
			if !errors.Is(err, ErrEvent) {
				t.Error("signature error does not unwrap to ErrEvent")
			}
		})
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("failed raises dispatched %d calls", n)
	}
}

func TestDynamicNoPayload(t *testing.T) {
	owner := &producer{id: 23}
	ev := NewDynamic(owner, nil, WithName("done"))
	var calls int32
	if err := ev.Subscribe(func(sender any) {
		atomic.AddInt32(&calls, 1)
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := ev.Raise(owner); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}

	// raising a no-payload event with any payload fails
	if err := ev.Raise(owner, "extra"); !IsInvalidSignature(err) {
		t.Errorf("expected InvalidSignatureError, got %v", err)
	}
}

func TestDynamicOwnerEnforcement(t *testing.T) {
	owner := &producer{id: 24}
	other := &producer{id: 24}
	ev := NewDynamic(owner, nil)
	var calls int32
	if err := ev.Subscribe(func(sender any) {
		atomic.AddInt32(&calls, 1)
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := ev.Raise(other); !IsInvocation(err) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("non-owner raise dispatched %d calls", n)
	}
}

func TestDynamicUnsubscribe(t *testing.T) {
	owner := &producer{id: 25}
	ev := NewDynamic(owner, NewSignature(reflect.TypeOf((*int)(nil)).Elem()))
	var calls int32
	cb := func(sender any, n int) {
		atomic.AddInt32(&calls, 1)
	}

	// silent no-op when never registered
	ev.Unsubscribe(cb)

	if err := ev.Subscribe(cb); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := ev.Subscribe(cb); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	ev.Unsubscribe(cb)
	if ev.Subscribers() != 1 {
		t.Fatalf("expected 1 remaining subscriber, got %d", ev.Subscribers())
	}
	if err := ev.Raise(owner, 7); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestDynamicNilArgumentForPointerType(t *testing.T) {
	owner := &producer{id: 26}
	ev := NewDynamic(owner, NewSignature(reflect.TypeOf((**producer)(nil)).Elem()))
	var got *producer = &producer{}
	if err := ev.Subscribe(func(sender any, p *producer) {
		got = p
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := ev.Raise(owner, nil); err != nil {
		t.Fatalf("raise with nil pointer failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil payload, got %v", got)
	}
}

func TestDynamicSignatureCopy(t *testing.T) {
	owner := &producer{id: 27}
	sig := NewSignature(reflect.TypeOf((*string)(nil)).Elem(), reflect.TypeOf((*int)(nil)).Elem())
	ev := NewDynamic(owner, sig)
	sig[0] = reflect.TypeOf((*bool)(nil)).Elem()
	want := "string, int"
	if got := ev.Signature().String(); got != want {
		t.Errorf("signature mutated externally got:%s, expected:%s", got, want)
	}
}

func TestDynamicMultiArg(t *testing.T) {
	owner := &producer{id: 28}
	ev := NewDynamic(owner, NewSignature(reflect.TypeOf((*string)(nil)).Elem(), reflect.TypeOf((*int)(nil)).Elem()))
	var gotName string
	var gotN int
	if err := ev.Subscribe(func(sender any, name string, n int) {
		gotName = name
		gotN = n
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := ev.Raise(owner, "retries", 3); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if gotName != "retries" || gotN != 3 {
		t.Errorf("payload is wrong got:(%s, %d), expected:(retries, 3)", gotName, gotN)
	}
}

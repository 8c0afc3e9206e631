package notify

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestFilterMiddleware(t *testing.T) {
	owner := &producer{id: 50}
	ev := New[int](owner)
	rec := NewRecorder[int]()
	even := func(n int) bool { return n%2 == 0 }
	if err := ev.Subscribe(rec.Callback(), WithMiddleware(Filter[int](even))); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for i := 0; i < 6; i++ {
		if err := ev.Raise(context.Background(), owner, i); err != nil {
			t.Fatalf("raise failed: %v", err)
		}
	}
	if rec.Count() != 3 {
		t.Errorf("expected 3 filtered calls, got %d", rec.Count())
	}
	for _, call := range rec.Calls() {
		if call.Data%2 != 0 {
			t.Errorf("filter passed odd payload %d", call.Data)
		}
	}
}

func TestOnceMiddleware(t *testing.T) {
	owner := &producer{id: 51}
	ev := New[string](owner)
	rec := NewRecorder[string]()
	if err := ev.Subscribe(rec.Callback(), WithMiddleware(Once[string]())); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := ev.Raise(context.Background(), owner, "tick"); err != nil {
			t.Fatalf("raise failed: %v", err)
		}
	}
	if rec.Count() != 1 {
		t.Errorf("expected exactly 1 call, got %d", rec.Count())
	}
	// the subscription stays registered, just inert
	if ev.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", ev.Subscribers())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	owner := &producer{id: 52}
	ev := New[int](owner)
	rec := NewRecorder[int]()
	// generous limit: Wait blocks briefly but every delivery goes through
	limiter := rate.NewLimiter(rate.Every(time.Millisecond), 1)
	if err := ev.Subscribe(rec.Callback(), WithMiddleware(RateLimit[int](limiter))); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := ev.Raise(context.Background(), owner, i); err != nil {
			t.Fatalf("raise failed: %v", err)
		}
	}
	if rec.Count() != 5 {
		t.Errorf("expected 5 delivered calls, got %d", rec.Count())
	}
}

func TestRateLimitDropsOnCancelledContext(t *testing.T) {
	owner := &producer{id: 53}
	ev := New[int](owner, WithTracing(false))
	rec := NewRecorder[int]()
	// zero-rate limiter never grants a token, so Wait returns only on
	// context cancellation
	limiter := rate.NewLimiter(0, 0)
	if err := ev.Subscribe(rec.Callback(), WithMiddleware(RateLimit[int](limiter))); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ev.Raise(ctx, owner, 1); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if rec.Count() != 0 {
		t.Errorf("expected dropped delivery, got %d calls", rec.Count())
	}
}

func TestMiddlewareOrder(t *testing.T) {
	owner := &producer{id: 54}
	ev := New[int](owner)
	var order []string
	tag := func(label string) Middleware[int] {
		return func(next Callback[int]) Callback[int] {
			return func(ctx context.Context, sender any, data int) {
				order = append(order, label)
				next(ctx, sender, data)
			}
		}
	}
	if err := ev.Subscribe(func(ctx context.Context, sender any, data int) {
		order = append(order, "cb")
	}, WithMiddleware(tag("outer"), tag("inner"))); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := ev.Raise(context.Background(), owner, 1); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	want := []string{"outer", "inner", "cb"}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Errorf("middleware order is wrong got:%v, expected:%v", order, want)
	}
}

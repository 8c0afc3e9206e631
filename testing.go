package notify

import (
	"context"
	"sync"
	"time"
)

// Recorder is a helper for testing event consumers. It records every call
// its callback receives for later assertions.
//
// Call Callback once and reuse the returned value: each Callback call
// creates a new closure, and Unsubscribe matches by callback identity.
type Recorder[T any] struct {
	mu    sync.Mutex
	calls []RecordedCall[T]
}

// RecordedCall represents a single delivery observed by a Recorder.
type RecordedCall[T any] struct {
	Sender  any
	Data    T
	RaiseID string
	Time    time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Callback returns a callback that records every call, for use with
// Subscribe.
func (r *Recorder[T]) Callback() Callback[T] {
	return func(ctx context.Context, sender any, data T) {
		r.mu.Lock()
		r.calls = append(r.calls, RecordedCall[T]{
			Sender:  sender,
			Data:    data,
			RaiseID: ContextRaiseID(ctx),
			Time:    time.Now(),
		})
		r.mu.Unlock()
	}
}

// Count returns the number of calls recorded.
func (r *Recorder[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Calls returns a copy of all recorded calls.
func (r *Recorder[T]) Calls() []RecordedCall[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]RecordedCall[T], len(r.calls))
	copy(calls, r.calls)
	return calls
}

// Last returns the last recorded call, or nil if none.
func (r *Recorder[T]) Last() *RecordedCall[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	call := r.calls[len(r.calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// WaitFor waits until at least n calls have been recorded or the timeout is
// reached. Returns true if the expected count was reached. Raises are
// synchronous; this exists for tests that raise from other goroutines.
func (r *Recorder[T]) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if r.Count() >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package notify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEvent is the base error kind for all event precondition violations.
// Every typed error in this package unwraps to ErrEvent, so consumers that
// only need coarse handling can use a single errors.Is check:
//
//	if err := ev.Raise(ctx, sender, data); errors.Is(err, notify.ErrEvent) {
//	    // invalid registration, invocation or signature
//	}
var ErrEvent = errors.New("event error")

// Registry sentinel errors.
// Use errors.Is() to check for these errors as they are wrapped with the
// event name at return sites.
var (
	// ErrDuplicateEvent is returned when declaring an event under a name
	// that is already taken in a Registry.
	ErrDuplicateEvent = errors.New("duplicate event")

	// ErrUnknownEvent is returned when raising or subscribing to a name
	// that was never declared in a Registry.
	ErrUnknownEvent = errors.New("unknown event")
)

// InvalidSignatureError is returned when raise-time arguments do not match
// the declared event signature, either in count or in type. No subscriber is
// notified when this error is returned.
type InvalidSignatureError struct {
	Event string
	Want  Signature
	Got   []string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("cannot raise event %q: expected signature (%s), given (%s)",
		e.Event, e.Want, strings.Join(e.Got, ", "))
}

func (e *InvalidSignatureError) Unwrap() error { return ErrEvent }

// IsInvalidSignature checks if an error indicates a raise-time signature
// mismatch.
func IsInvalidSignature(err error) bool {
	var sigErr *InvalidSignatureError
	return errors.As(err, &sigErr)
}

// RegistrationError is returned when a callback being subscribed is not
// compatible with the event signature. Want and Got count parameters
// including the implicit leading sender parameter. The registry is left
// unmodified when this error is returned.
type RegistrationError struct {
	Event  string
	Want   int
	Got    int
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot subscribe to event %q: %s", e.Event, e.Reason)
	}
	return fmt.Sprintf("cannot subscribe to event %q: callback must accept %d parameters, but %d were defined; "+
		"note the first parameter passed to the callback is the sender", e.Event, e.Want, e.Got)
}

func (e *RegistrationError) Unwrap() error { return ErrEvent }

// IsRegistration checks if an error indicates an incompatible callback.
func IsRegistration(err error) bool {
	var regErr *RegistrationError
	return errors.As(err, &regErr)
}

// InvocationError is returned when any caller other than the bound owner
// attempts to raise an event. No dispatch is performed.
type InvocationError struct {
	Event  string
	Reason string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("cannot raise event %q: %s", e.Event, e.Reason)
}

func (e *InvocationError) Unwrap() error { return ErrEvent }

// IsInvocation checks if an error indicates a raise by a non-owner.
func IsInvocation(err error) bool {
	var invErr *InvocationError
	return errors.As(err, &invErr)
}

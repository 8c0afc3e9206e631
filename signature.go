package notify

import (
	"reflect"
	"strings"
)

// Signature is the ordered sequence of payload types a Dynamic event
// expects, excluding the implicit leading sender argument. An empty or nil
// Signature means the event carries no payload.
//
// Signatures are fixed at construction and never mutated afterwards.
type Signature []reflect.Type

// NewSignature normalizes a list of types into a Signature. A nil type
// entry is a declaration error and panics.
func NewSignature(types ...reflect.Type) Signature {
	if len(types) == 0 {
		return nil
	}
	sig := make(Signature, len(types))
	for i, t := range types {
		if t == nil {
			panic("notify: signature types cannot be nil")
		}
		sig[i] = t
	}
	return sig
}

func (s Signature) String() string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

// accepts reports whether a value of arg's dynamic type can be passed for
// the parameter at index i. A nil arg is accepted only for nilable types.
func (s Signature) accepts(i int, arg any) bool {
	t := s[i]
	if arg == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface,
			reflect.Map, reflect.Pointer, reflect.Slice:
			return true
		default:
			return false
		}
	}
	return reflect.TypeOf(arg).AssignableTo(t)
}

// check validates raise arguments against the signature, returning the
// error to surface or nil. No side effects.
func (s Signature) check(event string, args []any) error {
	if len(args) != len(s) {
		return &InvalidSignatureError{Event: event, Want: s, Got: typeNames(args)}
	}
	for i, arg := range args {
		if !s.accepts(i, arg) {
			return &InvalidSignatureError{Event: event, Want: s, Got: typeNames(args)}
		}
	}
	return nil
}

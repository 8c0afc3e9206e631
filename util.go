package notify

import (
	"reflect"

	"github.com/google/uuid"
)

const instrumentationName = "github.com/rbaliyan/notify"

// Span and metric attribute keys.
const (
	attrKeyEventName = "event.name"
	attrKeyRaiseID   = "event.raise_id"
	attrKeyOwner     = "event.owner"
)

// NewID generates a new unique raise ID.
func NewID() string {
	u, err := uuid.NewRandom()
	if err != nil {
		return ""
	}
	return u.String()
}

// callbackKey returns the identity key for a callback value.
//
// Go functions are not comparable, so identity is the underlying code
// pointer. Two method values of the same method on the same receiver type
// share identity, as do closures created from the same function literal.
func callbackKey(cb any) uintptr {
	return reflect.ValueOf(cb).Pointer()
}

// identical reports whether two values are the same by interface equality,
// guarding against non-comparable dynamic types which would otherwise panic.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if t := reflect.TypeOf(a); !t.Comparable() {
		return false
	}
	if t := reflect.TypeOf(b); !t.Comparable() {
		return false
	}
	return a == b
}

// typeNames renders the dynamic type name of each argument, for error
// messages.
func typeNames(args []any) []string {
	names := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			names[i] = "nil"
			continue
		}
		names[i] = reflect.TypeOf(a).String()
	}
	return names
}

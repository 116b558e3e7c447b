// Package herrors defines the error kinds raised by the HAMT map and a
// generic helper for recovering a concrete kind from a wrapped error.
package herrors

import (
	"errors"
	"fmt"

	"github.com/flier/hamt/pkg/xerrors"
)

// KeyNotFoundError is returned by the subscript-style accessor when the
// requested key has no entry in the map. The option-returning lookup paths
// never raise this; they signal absence via opt.Option instead.
type KeyNotFoundError[K any] struct {
	Key K
}

func (e *KeyNotFoundError[K]) Error() string {
	return fmt.Sprintf("hamt: key not found: %v", e.Key)
}

// InvariantViolationError indicates a bug, not an input error: a leaf was
// asked for a child, or an internal node was asked for a value. Released
// builds should never observe this, since the insertion and lookup loops
// only ever query the node variant a given tree level is known to hold.
//
// Stack is populated only when raised through the debug-build assertion
// path; it is empty when the error is constructed directly, as in tests.
type InvariantViolationError struct {
	Reason string
	Stack  string
}

func (e *InvariantViolationError) Error() string {
	if e.Stack == "" {
		return fmt.Sprintf("hamt: invariant violation: %s", e.Reason)
	}

	return fmt.Sprintf("hamt: invariant violation: %s\n%s", e.Reason, e.Stack)
}

// ErrOutOfMemory is the panic value raised by the child-pointer pool when an
// allocation would push it past its configured ceiling. This is a fatal
// condition in practice; it exists as a sentinel so tests can simulate pool
// exhaustion without needing to exhaust real process memory.
var ErrOutOfMemory = errors.New("hamt: out of memory")

// As recovers a concrete error type T from err if it (or something it
// wraps) is a T. It delegates to [xerrors.AsA], a generic wrapper around
// the standard library's [errors.As].
func As[T error](err error) (T, bool) {
	return xerrors.AsA[T](err)
}

package debug

import "testing"

// tls holds the current test, if any, so that Log can route through t.Log
// instead of stderr. The map this package instruments is single-threaded by
// contract (see the Map type's documentation), so a plain package variable is
// enough here; there is no goroutine-scoped state to track.
var tls testing.TB

// WithTesting sets a testing pointer for debugging.
//
// This will cause t.Log() to be used to print debug traces instead of stderr.
func WithTesting(t testing.TB) func() {
	t.Helper()

	prev := tls
	tls = t
	return func() {
		tls = prev
	}
}

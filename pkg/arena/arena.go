// Package arena provides a block-allocated, address-stable store for
// uniformly-sized records, with a LIFO free-list for recycling.
//
// This is the node allocator that backs the HAMT: every internal and leaf
// node in the tree is handed out by an [Arena], never by a plain `new`. The
// allocator hands out slots from a "current block" of records by bumping an
// index; when the block is exhausted, a fresh block is appended and the
// index resets. Recycled slots are threaded onto a LIFO free-list and are
// always preferred over bumping, since a just-freed slot is more likely to
// be hot in cache.
//
// # Pointer stability
//
// Once [Arena.Allocate] hands out a pointer, that pointer stays valid (and
// at the same address) for the lifetime of the arena: blocks are never
// resized or moved, only appended. This is load-bearing for the HAMT, which
// stores raw `*node[K, V]` pointers inside its internal nodes.
package arena

import "github.com/flier/hamt/internal/debug"

// DefaultBlockSize is the number of records allocated per block when the
// caller does not request a specific size.
const DefaultBlockSize = 1024

// Arena hands out zero-valued, stably-addressed slots of a single record
// type T.
//
// A zero Arena is not ready to use; construct one with [New].
type Arena[T any] struct {
	blockSize int
	blocks    [][]T
	used      int // slots consumed in the last block

	free []*T // LIFO free-list of recycled slots
}

// New constructs an Arena that allocates blocks of blockSize records at a
// time. A non-positive blockSize falls back to [DefaultBlockSize].
func New[T any](blockSize int) *Arena[T] {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	return &Arena[T]{blockSize: blockSize}
}

// Allocate returns a pointer to a fresh, zero-valued T.
//
// It prefers a slot from the free-list (LIFO, likely hot in cache);
// otherwise it bumps within the current block; otherwise it allocates a new
// block and resumes from its first slot.
func (a *Arena[T]) Allocate() *T {
	if n := len(a.free); n > 0 {
		p := a.free[n-1]
		a.free = a.free[:n-1]

		var zero T
		*p = zero

		return p
	}

	if len(a.blocks) == 0 || a.used == a.blockSize {
		a.blocks = append(a.blocks, make([]T, a.blockSize))
		a.used = 0

		a.log("grow", "%v", debug.Dict(nil, "blocks", len(a.blocks), "blockSize", a.blockSize))
	}

	block := a.blocks[len(a.blocks)-1]
	p := &block[a.used]
	a.used++

	return p
}

// Recycle appends p to the free-list for reuse by a later [Arena.Allocate].
//
// The caller must have already destroyed whatever payload p's record held;
// Recycle does not touch the pointee beyond handing it back out later.
func (a *Arena[T]) Recycle(p *T) {
	a.free = append(a.free, p)

	a.log("recycle", "%v", debug.Fprintf("freeListLen=%d", len(a.free)))
}

// log emits a debug trace line for a, prefixed with this arena's identity
// and occupancy. Compiles to nothing outside debug builds.
func (a *Arena[T]) log(op, format string, args ...any) {
	debug.Log([]any{"%p blocks=%d used=%d", a, len(a.blocks), a.used}, op, format, args...)
}

// Blocks returns the number of blocks currently backing this arena. Exposed
// for diagnostics and tests; not meant for the hot path.
func (a *Arena[T]) Blocks() int { return len(a.blocks) }

// FreeListLen returns the number of slots currently on the free-list.
func (a *Arena[T]) FreeListLen() int { return len(a.free) }

// Destroy releases every block. Individual records are not destructed here:
// destructing a record's payload (e.g. a leaf's key/value pairs) is the
// owning Map's responsibility, and must happen before Destroy is called.
func (a *Arena[T]) Destroy() {
	a.blocks = nil
	a.free = nil
	a.used = 0
}

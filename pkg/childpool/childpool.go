// Package childpool provides a bump-allocated slab for variable-length
// arrays, with a size-aware free-list for arrays vacated by growth.
//
// This is the child-pointer array allocator for the HAMT: every internal
// node's dense child array comes from a [Pool], so that growing a node's
// array never touches the general-purpose heap on the common path. The
// pool pre-allocates one large slab of slots and bumps a cursor through it;
// arrays released back to the pool (because their owning node outgrew them)
// are threaded onto a free-list and reused by later allocations.
package childpool

import (
	"github.com/flier/hamt/internal/debug"
	"github.com/flier/hamt/pkg/herrors"
)

// DefaultCapacity is the number of slots in the pool's slab when the caller
// does not request a specific size. Sized so that workloads of tens of
// thousands of entries do not reach the fallback allocator.
const DefaultCapacity = 4_000_000

// Option configures a Pool at construction time.
type Option func(*config)

type config struct {
	ceiling int
}

// WithCeiling caps the total number of elements (slab plus fallback) a Pool
// will ever hand out. Once the ceiling would be exceeded, Allocate panics
// with [herrors.ErrOutOfMemory] instead of falling back to the general
// allocator. Absent this option, a Pool's fallback path is unbounded, same
// as calling make directly.
func WithCeiling(ceiling int) Option {
	return func(c *config) { c.ceiling = ceiling }
}

// Stats reports the pool's allocation counters, for testability and
// observability. Not on the hot path.
type Stats struct {
	// TotalAllocations is the number of calls to [Pool.Allocate].
	TotalAllocations uint64
	// FallbackAllocations is the number of allocations that missed both the
	// free-list and the slab and fell back to the general allocator.
	FallbackAllocations uint64
	// BumpSlotsConsumed is the total number of slab slots handed out via
	// bump allocation (excludes free-list reuse and fallback).
	BumpSlotsConsumed uint64
	// ReusedSlots is the number of allocations satisfied from the free-list.
	ReusedSlots uint64
	// FreeListLength is the current number of arrays sitting on the
	// free-list, available for reuse.
	FreeListLength int
}

// Pool allocates variable-length arrays of type T from a single pre-sized
// slab, falling back to the general allocator only once the slab is
// exhausted.
//
// A zero Pool is not ready to use; construct one with [New].
type Pool[T any] struct {
	slab []T
	next int

	free [][]T // vacated arrays, indexed by no particular order; size-matched on allocate

	stats Stats

	ceiling       int // 0 means unbounded
	fallbackElems int // cumulative elements handed out via the fallback path
}

// New constructs a Pool backed by a slab of capacity slots. A non-positive
// capacity falls back to [DefaultCapacity].
func New[T any](capacity int, opts ...Option) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	var cfg config
	for _, apply := range opts {
		apply(&cfg)
	}

	return &Pool[T]{slab: make([]T, capacity), ceiling: cfg.ceiling}
}

// Allocate returns an array of exactly size elements.
//
// It first looks for a free-list entry whose capacity is at least size —
// the minimal contract here is that a reused array can always satisfy the
// request, not that it was originally sized for it. Growth in this package
// is monotone (an internal node's child array only ever grows), so the
// free-list never needs to serve a request larger than any array it holds
// for long; see the package-level discussion in DESIGN.md for the
// ambiguity this resolves.
//
// Absent a usable free-list entry, Allocate bumps the slab cursor; once the
// slab is exhausted, it falls back to the general allocator (tracked via
// [Pool.Stats]), unless that would exceed a configured [WithCeiling], in
// which case it panics with [herrors.ErrOutOfMemory] — pool exhaustion past
// the ceiling is a fatal condition, not a recoverable one.
//
// The returned array's contents are not cleared: callers must overwrite
// every cell they intend to read before reading it.
func (p *Pool[T]) Allocate(size int) []T {
	p.stats.TotalAllocations++

	for i := len(p.free) - 1; i >= 0; i-- {
		if cap(p.free[i]) >= size {
			arr := p.free[i][:size]

			last := len(p.free) - 1
			p.free[i] = p.free[last]
			p.free = p.free[:last]

			p.stats.ReusedSlots++

			debug.Log(nil, "allocate", "reused size=%d freeListLen=%d", size, len(p.free))

			return arr
		}
	}

	if p.next+size <= len(p.slab) {
		arr := p.slab[p.next : p.next+size : p.next+size]
		p.next += size
		p.stats.BumpSlotsConsumed += uint64(size)

		debug.Log(nil, "allocate", "%v", debug.Dict("bump", "size", size, "next", p.next))

		return arr
	}

	if p.ceiling > 0 && len(p.slab)+p.fallbackElems+size > p.ceiling {
		panic(herrors.ErrOutOfMemory)
	}

	p.fallbackElems += size
	p.stats.FallbackAllocations++

	debug.Log(nil, "allocate", "%v", debug.Fprintf("fallback size=%d total=%d", size, p.fallbackElems))

	return make([]T, size)
}

// Release returns arr to the free-list for future reuse. The cells are not
// zeroed; a later [Pool.Allocate] call returning this array will overwrite
// them before use.
func (p *Pool[T]) Release(arr []T) {
	if len(arr) == 0 {
		return
	}

	p.free = append(p.free, arr)

	debug.Log(nil, "release", "cap=%d freeListLen=%d", cap(arr), len(p.free))
}

// Stats returns a snapshot of the pool's allocation counters.
func (p *Pool[T]) Stats() Stats {
	s := p.stats
	s.FreeListLength = len(p.free)

	return s
}

// Destroy releases the slab and drops tracked free-list entries. Arrays
// allocated via the fallback path are ordinary Go slices and are reclaimed
// by the garbage collector once unreferenced; Destroy does not need to
// track them separately.
func (p *Pool[T]) Destroy() {
	p.slab = nil
	p.next = 0
	p.free = nil
}

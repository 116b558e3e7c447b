package hamt

import (
	"math/bits"

	"github.com/flier/hamt/internal/debug"
	"github.com/flier/hamt/pkg/arena"
	"github.com/flier/hamt/pkg/childpool"
)

// chunkBits is the width, in bits, of one level's slice of the hash.
const chunkBits = 6

// chunkMask isolates the low chunkBits bits of a shifted hash.
const chunkMask = 1<<chunkBits - 1

// maxLevel is the fixed tree depth: ten 6-bit chunks exactly cover the
// 60 bits of hash this map uses.
const maxLevel = 10

// hashMask clears the top 4 bits of a 64-bit hash, leaving the 60 bits that
// ten 6-bit chunks address exactly.
const hashMask = uint64(1)<<60 - 1

// chunk extracts the level-th 6-bit slice of h. Level 0 uses the lowest six
// bits.
func chunk(h uint64, level int) uint8 {
	return uint8((h >> (chunkBits * level)) & chunkMask)
}

// kind distinguishes the two node variants. The tag is fixed at
// construction; a node never transitions between variants.
type kind uint8

const (
	kindInternal kind = iota
	kindLeaf
)

// entry is one (key, value) pair held by a leaf bucket.
type entry[K comparable, V any] struct {
	key K
	val V
}

// node is a tagged record that is either an internal node — a bitmap plus a
// dense array of child pointers — or a leaf node — a small ordered bucket
// of (key, value) pairs.
//
// Asking a leaf for a child, or an internal node for a value, is a
// programmer error: the insertion and lookup loops never do this, since
// they know from the current level which variant they are holding.
type node[K comparable, V any] struct {
	tag kind

	// Internal fields.
	bitmap   uint64
	children []*node[K, V] // physical length is this node's capacity

	// Leaf fields.
	entries []entry[K, V]
}

// liveChildren returns the live prefix of this node's child array: the
// physical array's capacity can run ahead of its occupancy (growth rounds
// up, and a reused pool array carries stale pointers in its unused tail),
// so callers must never range over n.children directly.
func (n *node[K, V]) liveChildren() []*node[K, V] {
	debug.Assert(n.tag == kindInternal, "liveChildren called on a leaf node")

	return n.children[:bits.OnesCount64(n.bitmap)]
}

// getChild returns the child at the given chunk, or nil if no such child
// exists.
func (n *node[K, V]) getChild(c uint8) *node[K, V] {
	debug.Assert(n.tag == kindInternal, "getChild called on a leaf node")

	bit := uint64(1) << c
	if n.bitmap&bit == 0 {
		return nil
	}

	idx := bits.OnesCount64(n.bitmap & (bit - 1))

	return n.children[idx]
}

// addChild inserts a new child at chunk c, which must not already be
// present, growing the child array first if it has no spare capacity. The
// freshly allocated child is internal when makeInternal is true, otherwise
// it is an empty leaf.
func (n *node[K, V]) addChild(
	c uint8,
	a *arena.Arena[node[K, V]],
	pool *childpool.Pool[*node[K, V]],
	makeInternal bool,
) *node[K, V] {
	debug.Assert(n.tag == kindInternal, "addChild called on a leaf node")

	bit := uint64(1) << c
	debug.Assert(n.bitmap&bit == 0, "addChild called for an already-present chunk")

	idx := bits.OnesCount64(n.bitmap & (bit - 1))
	oldN := bits.OnesCount64(n.bitmap)
	newN := oldN + 1

	if newN > len(n.children) {
		n.grow(growthCapacity(len(n.children), newN), pool)
	}

	n.bitmap |= bit

	// Shift children[idx:oldN] one slot right, back-to-front so the move
	// never clobbers a cell it still needs to read.
	for i := oldN; i > idx; i-- {
		n.children[i] = n.children[i-1]
	}

	child := a.Allocate()
	if makeInternal {
		*child = node[K, V]{tag: kindInternal}
	} else {
		*child = node[K, V]{tag: kindLeaf}
	}

	n.children[idx] = child

	return child
}

// growthCapacity computes the next child-array capacity per the doubling
// schedule: max(capacity*2, 4), clamped up to need if that is larger. An
// empty array's first growth yields capacity 4.
func growthCapacity(capacity, need int) int {
	next := capacity * 2
	if next < 4 {
		next = 4
	}
	if next < need {
		next = need
	}

	return next
}

// grow reallocates this node's child array to newCapacity, copying the
// live prefix and releasing the superseded array back to the pool.
func (n *node[K, V]) grow(newCapacity int, pool *childpool.Pool[*node[K, V]]) {
	liveN := bits.OnesCount64(n.bitmap)

	next := pool.Allocate(newCapacity)
	copyChildren(next, n.children[:liveN])

	if len(n.children) > 0 {
		pool.Release(n.children)
	}

	n.children = next
}

// copyChildren copies src into the front of dst. Short prefixes (the common
// case near the leaves of a sparsely populated tree) are unrolled.
func copyChildren[K comparable, V any](dst, src []*node[K, V]) {
	switch len(src) {
	case 0:
	case 1:
		dst[0] = src[0]
	case 2:
		dst[0], dst[1] = src[0], src[1]
	case 3:
		dst[0], dst[1], dst[2] = src[0], src[1], src[2]
	case 4:
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], src[3]
	default:
		copy(dst, src)
	}
}

// leafGet scans this leaf's bucket for key, returning its value if present.
func (n *node[K, V]) leafGet(key K) (V, bool) {
	debug.Assert(n.tag == kindLeaf, "leafGet called on an internal node")

	for i := range n.entries {
		if n.entries[i].key == key {
			return n.entries[i].val, true
		}
	}

	var zero V

	return zero, false
}

// leafAdd inserts (key, value) into this leaf's bucket. If key was already
// present, its value is overwritten and leafAdd reports false (an update);
// otherwise the pair is appended in insertion order and leafAdd reports
// true (a new entry).
func (n *node[K, V]) leafAdd(key K, val V) bool {
	debug.Assert(n.tag == kindLeaf, "leafAdd called on an internal node")

	for i := range n.entries {
		if n.entries[i].key == key {
			n.entries[i].val = val
			return false
		}
	}

	n.entries = append(n.entries, entry[K, V]{key: key, val: val})

	return true
}

package hamt

import (
	"fmt"
	"strings"

	"github.com/dolthub/maphash"

	"github.com/flier/hamt/pkg/arena"
	"github.com/flier/hamt/pkg/childpool"
	"github.com/flier/hamt/pkg/herrors"
	"github.com/flier/hamt/pkg/opt"
)

// Map is an in-memory associative array keyed by K, implemented as a Hash
// Array Mapped Trie. It is not safe for concurrent mutation; callers must
// serialize access externally.
//
// The zero Map is not ready to use; construct one with [New].
type Map[K comparable, V any] struct {
	root *node[K, V]

	arena *arena.Arena[node[K, V]]
	pool  *childpool.Pool[*node[K, V]]

	hashFn  func(K) uint64
	hasher  maphash.Hasher[K] // used when hashFn is nil
	cloneFn func(V) V         // nil means store by plain assignment

	size int
}

// New constructs an empty Map, applying any supplied options.
func New[K comparable, V any](opts ...Option[K, V]) *Map[K, V] {
	var cfg config[K, V]
	for _, apply := range opts {
		apply(&cfg)
	}

	var poolOpts []childpool.Option
	if cfg.poolCeiling > 0 {
		poolOpts = append(poolOpts, childpool.WithCeiling(cfg.poolCeiling))
	}

	m := &Map[K, V]{
		arena: arena.New[node[K, V]](cfg.arenaBlock),
		pool:  childpool.New[*node[K, V]](cfg.poolCapacity, poolOpts...),
	}

	if cfg.hashFn != nil {
		m.hashFn = cfg.hashFn
	} else {
		m.hasher = maphash.NewHasher[K]()
	}

	m.cloneFn = cfg.cloneFn

	m.root = m.arena.Allocate()
	*m.root = node[K, V]{tag: kindInternal}

	return m
}

// hash computes the masked 60-bit hash this map uses for traversal.
func (m *Map[K, V]) hash(key K) uint64 {
	var h uint64
	if m.hashFn != nil {
		h = m.hashFn(key)
	} else {
		h = m.hasher.Hash(key)
	}

	return h & hashMask
}

// Insert stores value under key. After Insert returns, Get(key) reports
// value. If key was absent, Len increases by one.
func (m *Map[K, V]) Insert(key K, value V) {
	if m.cloneFn != nil {
		value = m.cloneFn(value)
	}

	h := m.hash(key)

	cur := m.root
	for level := 0; level < maxLevel; level++ {
		c := chunk(h, level)

		child := cur.getChild(c)
		if child == nil {
			child = cur.addChild(c, m.arena, m.pool, level < maxLevel-1)
		}

		cur = child
	}

	if cur.leafAdd(key, value) {
		m.size++
	}
}

// Get returns the value stored under key, or [opt.None] if key is absent.
func (m *Map[K, V]) Get(key K) opt.Option[V] {
	leaf := m.find(key)
	if leaf == nil {
		return opt.None[V]()
	}

	if v, ok := leaf.leafGet(key); ok {
		return opt.Some(v)
	}

	return opt.None[V]()
}

// MustGet returns the value stored under key, or a
// [herrors.KeyNotFoundError] if key is absent.
func (m *Map[K, V]) MustGet(key K) (V, error) {
	leaf := m.find(key)
	if leaf != nil {
		if v, ok := leaf.leafGet(key); ok {
			return v, nil
		}
	}

	var zero V

	return zero, &herrors.KeyNotFoundError[K]{Key: key}
}

// Contains reports whether key has an entry in the map. Equivalent to
// Get(key).IsSome().
func (m *Map[K, V]) Contains(key K) bool {
	return m.Get(key).IsSome()
}

// find walks the tree for key's chunks, returning the leaf it reaches, or
// nil if any step along the way is missing.
func (m *Map[K, V]) find(key K) *node[K, V] {
	h := m.hash(key)

	cur := m.root
	for level := 0; level < maxLevel; level++ {
		c := chunk(h, level)

		cur = cur.getChild(c)
		if cur == nil {
			return nil
		}
	}

	return cur
}

// Len returns the current number of distinct keys held by the map.
func (m *Map[K, V]) Len() int { return m.size }

// String renders the map as "{k1: v1, k2: v2, ...}", or "{}" when empty.
// Order follows tree traversal order, which is deterministic for a fixed
// insertion history but not otherwise specified.
func (m *Map[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('{')

	first := true
	m.walk(m.root, func(k K, v V) {
		if !first {
			b.WriteString(", ")
		}
		first = false

		fmt.Fprintf(&b, "%v: %v", k, v)
	})

	b.WriteByte('}')

	return b.String()
}

// Pair is one (key, value) entry yielded by [Map.All].
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// All returns every (key, value) entry in the map exactly once, in tree
// traversal order. The returned slice is a snapshot; mutating the map
// afterwards does not affect it.
func (m *Map[K, V]) All() []Pair[K, V] {
	pairs := make([]Pair[K, V], 0, m.size)

	m.walk(m.root, func(k K, v V) {
		pairs = append(pairs, Pair[K, V]{Key: k, Value: v})
	})

	return pairs
}

// walk visits every (key, value) pair reachable from n in traversal order:
// ascending slot order for internal nodes' children, insertion order within
// a leaf's bucket.
func (m *Map[K, V]) walk(n *node[K, V], visit func(K, V)) {
	if n == nil {
		return
	}

	if n.tag == kindLeaf {
		for _, e := range n.entries {
			visit(e.key, e.val)
		}

		return
	}

	for _, child := range n.liveChildren() {
		m.walk(child, visit)
	}
}

// PoolStats returns the child-pointer pool's allocation counters.
func (m *Map[K, V]) PoolStats() childpool.Stats {
	return m.pool.Stats()
}

// TreeStats returns a structural summary of the tree: entry count, observed
// depth, node counts, and child-array occupancy. These power structural
// test assertions; they are not on the hot path.
func (m *Map[K, V]) TreeStats() TreeStats {
	s := TreeStats{Entries: m.size}
	m.collectStats(m.root, 0, &s)

	if s.InternalCount > 0 {
		s.AvgChildrenPerInternal = float64(s.TotalChildPointers) / float64(s.InternalCount)
	}

	return s
}

func (m *Map[K, V]) collectStats(n *node[K, V], depth int, s *TreeStats) {
	if n == nil {
		return
	}

	if depth > s.MaxObservedDepth {
		s.MaxObservedDepth = depth
	}

	if n.tag == kindLeaf {
		s.LeafCount++
		return
	}

	s.InternalCount++

	for _, child := range n.liveChildren() {
		s.TotalChildPointers++

		m.collectStats(child, depth+1, s)
	}
}

// Destroy releases every node and child array owned by this map, including
// the backing blocks of its arena and pool. The map must not be used after
// Destroy returns.
func (m *Map[K, V]) Destroy() {
	m.release(m.root)
	m.pool.Destroy()
	m.arena.Destroy()
	m.root = nil
	m.size = 0
}

// release walks the tree, dropping leaf payloads and releasing child
// arrays back to the pool, before the allocators themselves are torn down.
func (m *Map[K, V]) release(n *node[K, V]) {
	if n == nil {
		return
	}

	if n.tag == kindLeaf {
		n.entries = nil
		return
	}

	for _, child := range n.liveChildren() {
		m.release(child)
	}

	if len(n.children) > 0 {
		m.pool.Release(n.children)
	}
}

// Package hamt implements an in-memory associative map keyed by hashable
// values, backed by a Hash Array Mapped Trie (HAMT).
//
// The map offers the standard dictionary contract — insert, update, lookup,
// membership, size — while keeping the insert and lookup paths free of
// general-purpose heap traffic: every node comes from a block-allocated
// [arena.Arena], and every internal node's child-pointer array comes from a
// bump-allocated [childpool.Pool].
//
// # Structure
//
// A Map holds a root [node], always internal, and descends through up to
// [maxLevel] internal nodes per key, terminating at a leaf bucket holding
// one or more colliding (key, value) pairs. Each internal node carries a
// 64-bit bitmap over its 64 possible child slots and a dense array, indexed
// by the popcount of the bitmap below a given slot, of pointers to its
// live children.
//
// # Concurrency
//
// A Map is not safe for concurrent mutation; callers must serialize access
// externally. There is no cancellation or timeout support: every operation
// completes in bounded CPU time proportional to tree depth.
//
// # Non-goals
//
// This map does not persist to disk, does not support cross-process
// sharing, is mutated in place rather than structurally shared, and does
// not implement deletion or ordered iteration.
package hamt

package hamt

// TreeStats is a structural summary of a Map's tree, returned by
// [Map.TreeStats]. It exists for structural test assertions and
// observability, not as a hot-path operation.
type TreeStats struct {
	// Entries is the number of distinct keys in the map.
	Entries int
	// MaxObservedDepth is the deepest leaf found during the walk, counted
	// from the root at depth 0.
	MaxObservedDepth int
	// InternalCount is the number of internal nodes in the tree.
	InternalCount int
	// LeafCount is the number of leaf buckets in the tree.
	LeafCount int
	// AvgChildrenPerInternal is TotalChildPointers divided by InternalCount.
	AvgChildrenPerInternal float64
	// TotalChildPointers is the sum, across all internal nodes, of their
	// live (non-nil) child pointers.
	TotalChildPointers int
}

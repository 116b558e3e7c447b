package hamt

// config holds the constructor-time knobs for a Map, populated by applying
// each Option in order.
type config[K comparable, V any] struct {
	hashFn       func(K) uint64
	poolCapacity int
	poolCeiling  int
	arenaBlock   int
	cloneFn      func(V) V
}

// Option configures a Map at construction time.
type Option[K comparable, V any] func(*config[K, V])

// WithHashFn overrides the map's default hash function. Honored even when
// adversarial — for example, a hash function that always returns the same
// value is a documented way to exercise the map's collision handling.
func WithHashFn[K comparable, V any](fn func(K) uint64) Option[K, V] {
	return func(c *config[K, V]) { c.hashFn = fn }
}

// WithPoolCapacity sets the number of child-pointer slots in the
// [childpool.Pool]'s slab. Default is [childpool.DefaultCapacity].
func WithPoolCapacity[K comparable, V any](capacity int) Option[K, V] {
	return func(c *config[K, V]) { c.poolCapacity = capacity }
}

// WithPoolCeiling caps the total number of child-pointer slots the
// [childpool.Pool] will ever hand out (slab plus fallback). Once reached,
// further growth panics with [herrors.ErrOutOfMemory] instead of growing
// past it. Absent this option, the pool's fallback path is unbounded, as if
// it called make directly. This exists to make pool exhaustion, a
// documented failure mode under very large populations, reproducible in
// tests without exhausting real process memory.
func WithPoolCeiling[K comparable, V any](ceiling int) Option[K, V] {
	return func(c *config[K, V]) { c.poolCeiling = ceiling }
}

// WithArenaBlock sets the number of node slots allocated per
// [arena.Arena] block. Default is [arena.DefaultBlockSize].
func WithArenaBlock[K comparable, V any](blockSize int) Option[K, V] {
	return func(c *config[K, V]) { c.arenaBlock = blockSize }
}

// WithClone sets the function used to copy a value before it is stored.
// By default a Map stores values by plain Go assignment; WithClone lets a
// caller whose V holds, say, a slice or pointer it does not want aliased
// into the map supply a deep-copy function instead.
func WithClone[K comparable, V any](fn func(V) V) Option[K, V] {
	return func(c *config[K, V]) { c.cloneFn = fn }
}

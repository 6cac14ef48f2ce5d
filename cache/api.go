package cache

import "context"

// Cache is a segmented, concurrent, in-process key/value cache with
// optional time- and weight-based eviction, LRU ordering, single-flight
// loading, and removal notifications. All methods are safe for concurrent
// use by any number of goroutines.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and a presence flag. A hit promotes
	// the entry to the head of the LRU list.
	Get(key K) (V, bool)

	// Put associates value with key, replacing any existing mapping. If a
	// mapping was replaced, a REPLACED removal notification is fired for
	// the old value once the coordinator has unlinked it.
	Put(key K, value V)

	// ComputeIfAbsent returns the value for key, computing and installing
	// it via loader on a miss. Concurrent calls for the same key are
	// coalesced: loader runs at most once, and every caller — leader and
	// followers alike — observes the same outcome, including a failure.
	ComputeIfAbsent(ctx context.Context, key K, loader Loader[K, V]) (V, error)

	// Invalidate removes key's mapping, if any, firing an INVALIDATED
	// removal notification. Returns whether a mapping was removed.
	Invalidate(key K) bool

	// InvalidateAll removes every mapping and blocks until an
	// INVALIDATED notification has been fired for each entry that was
	// live when the call began.
	InvalidateAll()

	// Refresh forces any outstanding weight- or time-based eviction to
	// occur and blocks until it has completed.
	Refresh()

	// Keys returns an LRU-ordered iterator over the cache's keys, from
	// most- to least-recently promoted. Iteration is not synchronized
	// against concurrent mutation and is well-defined only if the caller
	// guarantees quiescence, except that Remove on the just-returned
	// element is always safe.
	Keys() *KeyIterator[K, V]

	// Values returns an LRU-ordered iterator over the cache's values,
	// with the same synchronization caveats as Keys.
	Values() *ValueIterator[K, V]

	// Stats returns a best-effort snapshot of hit/miss/eviction counters.
	Stats() Stats

	// Count returns the number of resident entries (best-effort).
	Count() int64

	// Weight returns the total weight of resident entries (best-effort).
	Weight() int64

	// Close stops the cache's background coordinator. The cache must not
	// be used afterward.
	Close() error
}

// Loader computes the value for a key on a ComputeIfAbsent miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

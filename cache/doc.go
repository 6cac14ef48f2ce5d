// Package cache implements a segmented, concurrent, in-process key/value
// cache with optional time- and weight-based eviction, LRU ordering,
// single-flight loading, and removal notifications.
//
// Design
//
//   - Segments: the key space is split into 256 fixed segments, each backed
//     by a plain map guarded by its own RWMutex. A segment never holds a
//     resolved value directly — it holds a promise that resolves to an
//     entry or to a failure, so a load in flight for a key is visible to,
//     and awaitable by, every other caller of that key.
//
//   - LRU ordering: a single doubly-linked list chains all live entries.
//     It is owned exclusively by one background goroutine per Cache (the
//     coordinator), which drains a FIFO queue of structural operations
//     (link/relink/unlink/evict/invalidate-all/barrier). No other
//     goroutine ever writes the list's links; the Keys/Values iterators
//     read them without synchronization.
//
//   - Single-flight loads: ComputeIfAbsent installs an incomplete promise
//     into the segment map before invoking the loader, so the loader always
//     runs outside every lock — a loader for one key may safely call
//     ComputeIfAbsent on another key that happens to hash to the same
//     segment.
//
//   - Weight and expiry: entries carry a write time and an access time.
//     Weight-based and time-based pruning both happen in the same Evict
//     pass that follows every promotion, so no separate sweeper goroutine
//     is needed.
//
// Basic usage
//
//	c := cache.New[string, string](cache.Options[string, string]{})
//	c.Put("a", "1")
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// With ComputeIfAbsent (single-flight)
//
//	c := cache.New[string, string](cache.Options[string, string]{})
//	v, err := c.ComputeIfAbsent(ctx, "k", func(ctx context.Context, k string) (string, error) {
//	    return fetch(ctx, k)
//	})
//
// With weight-based eviction and a removal listener
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{
//	    MaximumWeight: 1 << 20,
//	    Weigher:       func(_ string, v []byte) int64 { return int64(len(v)) },
//	    RemovalListener: func(k string, v []byte, reason cache.RemovalReason) {
//	        log.Printf("removed %s: %s", k, reason)
//	    },
//	})
//
// Thread-safety
//
// All Cache methods are safe for concurrent use by any number of
// goroutines. The segment count is fixed at 256; a key's segment is the low
// eight bits of its hash.
package cache

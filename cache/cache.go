package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segcache-go/segcache/internal/util"
)

// segmentCount is fixed at 256, per the external interface contract: a
// key's segment is the low eight bits of its hash.
const segmentCount = 256

// cache is the concrete Cache implementation. New returns it behind the
// Cache[K, V] interface, keeping the interface as the only exported
// contract so the concrete struct's fields stay unreachable from outside
// the package.
type cache[K comparable, V any] struct {
	segments [segmentCount]*segment[K, V]
	hash     func(K) uint64

	opts            Options[K, V]
	hasAccessExpiry bool
	hasWriteExpiry  bool

	// head, tail, count, and weight are written exclusively by the
	// coordinator goroutine; count and weight are read without
	// synchronization by Count/Weight/Stats, and head by the Keys/Values
	// iterators (best-effort).
	head   *Entry[K, V]
	tail   *Entry[K, V]
	count  atomic.Int64
	weight atomic.Int64

	coord  *coordinator[K, V]
	closed atomic.Bool
}

// New constructs a Cache. It panics if opts is misconfigured (negative
// MaximumWeight or expiry durations), failing fast at construction rather
// than surfacing a bad configuration later at first use.
func New[K comparable, V any](opts Options[K, V]) Cache[K, V] {
	opts.validate()

	c := &cache[K, V]{
		hash:            util.Fnv64a[K],
		opts:            opts,
		hasAccessExpiry: opts.ExpireAfterAccess > 0,
		hasWriteExpiry:  opts.ExpireAfterWrite > 0,
	}
	for i := range c.segments {
		c.segments[i] = newSegment[K, V]()
	}
	c.coord = newCoordinator[K, V](c)
	return c
}

// monoEpoch anchors the default clock; time.Since measures against its
// monotonic reading, so expiry is unaffected by wall-clock adjustments.
var monoEpoch = time.Now()

// now returns the current relative time, or zero if neither access- nor
// write-expiry is configured, avoiding a clock read when nothing needs it.
func (c *cache[K, V]) now() int64 {
	if !c.hasAccessExpiry && !c.hasWriteExpiry {
		return 0
	}
	if c.opts.Clock != nil {
		return c.opts.Clock.NowNanos()
	}
	return int64(time.Since(monoEpoch))
}

func (c *cache[K, V]) segmentFor(key K) *segment[K, V] {
	return c.segments[c.hash(key)&0xff]
}

// promote observes entry's state without locking the list: a DELETED
// entry is stale and must not be returned to a caller, while a NEW or
// EXISTING entry is queued for linking/relinking followed by an Evict
// pass, which is what bounds weight and expiry without a separate
// sweeper.
func (c *cache[K, V]) promote(entry *Entry[K, V], now int64) bool {
	switch entry.loadState() {
	case stateDeleted:
		return false
	case stateExisting:
		c.coord.enqueue(&opRelinkAtHead[K, V]{entry: entry})
	case stateNew:
		c.coord.enqueue(&opLinkAtHead[K, V]{entry: entry})
	}
	c.coord.enqueue(&opEvict[K, V]{now: now})
	return true
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	now := c.now()
	entry := c.segmentFor(key).get(key, now)
	if entry == nil || c.isExpired(entry, now) {
		var zero V
		return zero, false
	}
	entry.accessTimeNanos.Store(now)
	c.promote(entry, now)
	return entry.value, true
}

func (c *cache[K, V]) Put(key K, value V) {
	now := c.now()
	seg := c.segmentFor(key)
	entry, prev := seg.put(key, value, now)

	if prev != nil {
		prevKey, prevValue := prev.key, prev.value
		c.coord.enqueue(&opUnlink[K, V]{entry: prev, callback: func(unlinked bool) {
			if unlinked {
				c.notify(prevKey, prevValue, ReasonReplaced)
			}
		}})
	}
	c.promote(entry, now)
}

// ComputeIfAbsent coalesces concurrent loads for the same key into a
// single call to loader. The loader always runs outside every lock, so a
// loader for one key may safely call ComputeIfAbsent on another key
// hashing to the same segment without deadlocking.
func (c *cache[K, V]) ComputeIfAbsent(ctx context.Context, key K, loader Loader[K, V]) (V, error) {
	now := c.now()
	seg := c.segmentFor(key)

	if entry := seg.get(key, now); entry != nil && !c.isExpired(entry, now) {
		entry.accessTimeNanos.Store(now)
		c.promote(entry, now)
		return entry.value, nil
	}

	fresh := newPromise[K, V]()
	occupant, present := seg.putIfAbsentPromise(key, fresh)

	if !present {
		// Leader: invoke the loader outside every lock.
		value, err := loader(ctx, key)
		if err != nil {
			fresh.fail(err)
		} else {
			fresh.complete(newEntry[K, V](key, value, now))
		}
	}

	entry, err := occupant.wait()
	if err != nil {
		seg.removeIfStillFailed(key, occupant)
		var zero V
		return zero, err
	}
	c.promote(entry, now)
	return entry.value, nil
}

func (c *cache[K, V]) Invalidate(key K) bool {
	entry := c.segmentFor(key).remove(key)
	if entry == nil {
		return false
	}
	c.coord.enqueue(&opDelete[K, V]{entry: entry, reason: ReasonInvalidated})
	return true
}

func (c *cache[K, V]) InvalidateAll() {
	signal := make(chan struct{})
	c.coord.enqueue(&opInvalidateAll[K, V]{signal: signal})
	<-signal
}

func (c *cache[K, V]) Refresh() {
	signal := make(chan struct{})
	c.coord.enqueue(&opEvict[K, V]{now: c.now()})
	c.coord.enqueue(&opBarrier[K, V]{signal: signal})
	<-signal
}

// Close stops the background coordinator goroutine. The cache must not be
// used afterward.
func (c *cache[K, V]) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.coord.stop()
	}
	return nil
}

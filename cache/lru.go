package cache

// The algorithms in this file are applied exclusively by the coordinator
// goroutine (coordinator.go) against a single Cache's head, tail, count,
// and weight fields. No other goroutine ever writes an Entry's
// before/after links (the Keys/Values iterators only read them, without
// synchronization), so none of this needs a lock.

// linkAtHead splices entry in at the head of the LRU list and marks it
// EXISTING, accounting its weight into the running total. Typical callers
// pass a NEW entry, but relinkAtHead below also uses it on an entry it just
// unlinked (transiently DELETED).
//
// If entry is already EXISTING, this is treated as a relink instead of a
// second link: concurrent ComputeIfAbsent callers for the same key can
// each promote the same still-NEW entry before the coordinator has
// processed the first of their link ops, which would otherwise splice the
// entry into the list twice and double-count weight.
func (c *cache[K, V]) linkAtHead(entry *Entry[K, V]) {
	if entry.loadState() == stateExisting {
		c.relinkAtHead(entry)
		return
	}

	h := c.head
	entry.before = nil
	entry.after = h
	c.head = entry
	if h == nil {
		c.tail = entry
	} else {
		h.before = entry
	}
	c.count.Add(1)
	c.addWeight(c.opts.Weigher(entry.key, entry.value))
	entry.storeState(stateExisting)
}

// relinkAtHead moves an EXISTING entry to the head, unless it is already
// there; an entry in any other state (e.g. DELETED by an invalidation that
// raced the promotion) is left out of the list. It is implemented as
// unlink-then-linkAtHead so that weight and count are correctly restored
// (the intermediate decrement and increment cancel out); no observer other
// than the coordinator itself ever sees the entry in its momentary DELETED
// state between the two calls.
func (c *cache[K, V]) relinkAtHead(entry *Entry[K, V]) {
	if c.head == entry || entry.loadState() != stateExisting {
		return
	}
	c.unlink(entry)
	c.linkAtHead(entry)
}

// unlink splices entry out of the LRU list if it is EXISTING, accounting
// its weight out of the running total and marking it DELETED. Returns
// whether it actually unlinked anything — an entry that is already
// DELETED (e.g. concurrently evicted) is a no-op.
func (c *cache[K, V]) unlink(entry *Entry[K, V]) bool {
	if entry.loadState() != stateExisting {
		return false
	}

	before, after := entry.before, entry.after
	if before == nil {
		c.head = after
		if c.head != nil {
			c.head.before = nil
		}
	} else {
		before.after = after
		entry.before = nil
	}
	if after == nil {
		c.tail = before
		if c.tail != nil {
			c.tail.after = nil
		}
	} else {
		after.before = before
		entry.after = nil
	}

	c.count.Add(-1)
	c.addWeight(-c.opts.Weigher(entry.key, entry.value))
	entry.storeState(stateDeleted)
	return true
}

// delete composes unlink with a removal notification, fired only if the
// entry was actually unlinked.
func (c *cache[K, V]) delete(entry *Entry[K, V], reason RemovalReason) {
	if c.unlink(entry) {
		c.notify(entry.key, entry.value, reason)
	}
}

// evict prunes the tail of the LRU list while it exceeds the configured
// weight or has expired, removing each pruned key from its segment first
// so no reader can observe a value whose entry is about to be recorded as
// DELETED without also observing its absence from the segment.
func (c *cache[K, V]) evict(now int64) {
	for c.tail != nil && c.shouldPrune(c.tail, now) {
		entry := c.tail
		c.segmentFor(entry.key).remove(entry.key)
		c.delete(entry, ReasonEvicted)
	}
}

// invalidateAllOnCoordinator acquires every segment's write lock in
// ascending index order, replaces each segment's map, marks every list
// entry DELETED, and zeroes head/tail/count/weight, releasing the segment
// locks in descending order before delivering notifications — so no
// notification is ever fired while a segment lock is held.
func (c *cache[K, V]) invalidateAllOnCoordinator() {
	liveHead := c.head

	for i := range c.segments {
		c.segments[i].mu.Lock()
	}
	for i := range c.segments {
		c.segments[i].resetMap()
	}
	for cur := liveHead; cur != nil; cur = cur.after {
		cur.storeState(stateDeleted)
	}
	c.head, c.tail = nil, nil
	c.count.Store(0)
	c.weight.Store(0)
	for i := len(c.segments) - 1; i >= 0; i-- {
		c.segments[i].mu.Unlock()
	}

	for cur := liveHead; cur != nil; cur = cur.after {
		c.notify(cur.key, cur.value, ReasonInvalidated)
	}
}

func (c *cache[K, V]) addWeight(delta int64) { c.weight.Add(delta) }

func (c *cache[K, V]) shouldPrune(e *Entry[K, V], now int64) bool {
	return c.exceedsWeight() || c.isExpired(e, now)
}

func (c *cache[K, V]) exceedsWeight() bool {
	return c.opts.MaximumWeight > 0 && c.weight.Load() > c.opts.MaximumWeight
}

func (c *cache[K, V]) isExpired(e *Entry[K, V], now int64) bool {
	if c.hasAccessExpiry && now-e.accessTimeNanos.Load() > int64(c.opts.ExpireAfterAccess) {
		return true
	}
	if c.hasWriteExpiry && now-e.writeTimeNanos > int64(c.opts.ExpireAfterWrite) {
		return true
	}
	return false
}

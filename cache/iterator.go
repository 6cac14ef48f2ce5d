package cache

// entryIterator walks the LRU list from head (most-recently-promoted)
// forward. It is not synchronized against concurrent mutation: the result
// of iterating while another goroutine mutates the cache is undefined,
// except that Remove on the just-returned element is always safe (it goes
// through the ordinary segment-remove-then-enqueue-delete path).
type entryIterator[K comparable, V any] struct {
	c       *cache[K, V]
	current *Entry[K, V]
	next    *Entry[K, V]
}

func newEntryIterator[K comparable, V any](c *cache[K, V]) *entryIterator[K, V] {
	return &entryIterator[K, V]{c: c, next: c.head}
}

func (it *entryIterator[K, V]) advance() bool {
	if it.next == nil {
		return false
	}
	it.current = it.next
	it.next = it.next.after
	return true
}

func (it *entryIterator[K, V]) entry() *Entry[K, V] { return it.current }

func (it *entryIterator[K, V]) remove() {
	entry := it.current
	if entry == nil {
		return
	}
	it.current = nil
	seg := it.c.segmentFor(entry.key)
	if removed := seg.remove(entry.key); removed != nil {
		it.c.coord.enqueue(&opDelete[K, V]{entry: removed, reason: ReasonInvalidated})
	}
}

// KeyIterator iterates a cache's keys in LRU order. See Cache.Keys.
type KeyIterator[K comparable, V any] struct {
	it *entryIterator[K, V]
}

// Next advances the iterator and reports whether a key is available.
func (k *KeyIterator[K, V]) Next() bool { return k.it.advance() }

// Key returns the key most recently produced by Next.
func (k *KeyIterator[K, V]) Key() K { return k.it.entry().key }

// Remove removes the key most recently produced by Next from the cache.
func (k *KeyIterator[K, V]) Remove() { k.it.remove() }

// ValueIterator iterates a cache's values in LRU order. See Cache.Values.
type ValueIterator[K comparable, V any] struct {
	it *entryIterator[K, V]
}

// Next advances the iterator and reports whether a value is available.
func (v *ValueIterator[K, V]) Next() bool { return v.it.advance() }

// Value returns the value most recently produced by Next.
func (v *ValueIterator[K, V]) Value() V { return v.it.entry().value }

// Remove removes the entry most recently produced by Next from the cache.
func (v *ValueIterator[K, V]) Remove() { v.it.remove() }

func (c *cache[K, V]) Keys() *KeyIterator[K, V] {
	return &KeyIterator[K, V]{it: newEntryIterator(c)}
}

func (c *cache[K, V]) Values() *ValueIterator[K, V] {
	return &ValueIterator[K, V]{it: newEntryIterator(c)}
}

package cache

import (
	"sync"

	"github.com/segcache-go/segcache/internal/util"
)

// segment is one of the cache's 256 fixed partitions of the key space. Its
// map holds promises rather than resolved entries: a load in flight for a
// key must be visible to, and awaitable by, every other caller of that key
// before the loader has produced a value. All lock scopes are limited to
// map access; a promise is always awaited outside the lock so a loader
// invoked by another goroutine can never deadlock against this segment.
type segment[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]*promise[K, V]

	_         util.CacheLinePad
	hits      util.PaddedAtomicInt64
	misses    util.PaddedAtomicInt64
	evictions util.PaddedAtomicInt64
}

func newSegment[K comparable, V any]() *segment[K, V] {
	return &segment[K, V]{m: make(map[K]*promise[K, V])}
}

// get resolves key's promise, if any, recording a hit or miss. It leaves the
// entry's access time alone: the caller checks expiry against the previous
// access time and bumps it only for an entry it actually returns.
func (s *segment[K, V]) get(key K, now int64) *Entry[K, V] {
	s.mu.RLock()
	p, ok := s.m[key]
	s.mu.RUnlock()

	if !ok {
		s.misses.Add(1)
		return nil
	}
	entry, err := p.wait()
	if err != nil || entry == nil {
		s.misses.Add(1)
		return nil
	}
	s.hits.Add(1)
	return entry
}

// put installs a fresh, already-resolved entry unconditionally and returns
// it together with whatever entry (if any) previously resolved for key.
func (s *segment[K, V]) put(key K, value V, now int64) (fresh *Entry[K, V], previous *Entry[K, V]) {
	entry := newEntry[K, V](key, value, now)
	p := resolvedPromise[K, V](entry)

	s.mu.Lock()
	prev := s.m[key]
	s.m[key] = p
	s.mu.Unlock()

	if prev != nil {
		if pe, err := prev.wait(); err == nil {
			previous = pe
		}
	}
	return entry, previous
}

// remove deletes key's mapping and returns the entry it resolved to, if
// any, counting an eviction on success. The counter is incremented here
// regardless of why the caller is removing the key: the segment has no
// notion of a removal reason, that distinction is layered on above, in
// the removal notification.
func (s *segment[K, V]) remove(key K) *Entry[K, V] {
	s.mu.Lock()
	p, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	entry, err := p.wait()
	if err != nil || entry == nil {
		return nil
	}
	s.evictions.Add(1)
	return entry
}

// putIfAbsentPromise atomically installs fresh under key unless a promise is
// already mapped there. It returns whichever promise now occupies the slot
// and whether fresh lost the race (present == true means fresh was not
// installed and the caller is a follower, not the leader).
func (s *segment[K, V]) putIfAbsentPromise(key K, fresh *promise[K, V]) (occupant *promise[K, V], present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.m[key]; ok {
		return p, true
	}
	s.m[key] = fresh
	return fresh, false
}

// removeIfStillFailed clears key's mapping only if it is still mapped to
// the given failed promise, so a concurrent Put or successful load that
// already replaced it is left untouched.
func (s *segment[K, V]) removeIfStillFailed(key K, p *promise[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[key]; ok && cur == p {
		delete(s.m, key)
	}
}

// snapshot returns this segment's best-effort counters.
func (s *segment[K, V]) snapshot() (hits, misses, evictions int64) {
	return s.hits.Load(), s.misses.Load(), s.evictions.Load()
}

// resetMap installs a fresh, empty map. Called only by the coordinator
// during invalidateAll, with the segment's write lock already held.
func (s *segment[K, V]) resetMap() {
	s.m = make(map[K]*promise[K, V])
}

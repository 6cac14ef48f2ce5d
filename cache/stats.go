package cache

// Stats is a best-effort snapshot of cache counters, summed across segments
// without any synchronizing barrier — a concurrent writer may be reflected
// in some segments' counters and not others.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns Hits / (Hits + Misses), or 0 if there have been no
// lookups at all.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns the sum of every segment's hit/miss/eviction counters.
func (c *cache[K, V]) Stats() Stats {
	var s Stats
	for i := range c.segments {
		h, m, e := c.segments[i].snapshot()
		s.Hits += h
		s.Misses += m
		s.Evictions += e
	}
	return s
}

// Count returns the number of resident entries. Best-effort: read without
// locking the coordinator.
func (c *cache[K, V]) Count() int64 { return c.count.Load() }

// Weight returns the total weight of resident entries. Best-effort: read
// without locking the coordinator.
func (c *cache[K, V]) Weight() int64 { return c.weight.Load() }

package cache

import "time"

// Clock supplies the monotonic time source used for expiry. Tests can
// substitute a fake clock (see cache_test.go's fakeClock) to avoid timing
// flakiness. Nil uses time.Now().
type Clock interface {
	NowNanos() int64
}

// Options configures a Cache at construction. Options are immutable once
// passed to New — there is no way to reconfigure a running cache.
type Options[K comparable, V any] struct {
	// ExpireAfterAccess evicts entries whose last access predates this
	// duration. Zero (the default) disables access-based expiry. Must be
	// non-negative.
	ExpireAfterAccess time.Duration
	// ExpireAfterWrite evicts entries whose write predates this duration.
	// Zero (the default) disables write-based expiry. Must be
	// non-negative.
	ExpireAfterWrite time.Duration

	// MaximumWeight bounds the total weight across all entries. Zero (the
	// default) disables weight-based eviction. Must be non-negative.
	MaximumWeight int64
	// Weigher assigns a non-negative weight to each entry. Nil (the
	// default) assigns a constant weight of 1 to every entry.
	Weigher func(key K, value V) int64

	// RemovalListener is invoked for every removal. Nil (the default)
	// installs a no-op listener. See RemovalListener's doc comment for
	// the reentrancy contract implementations must honor.
	RemovalListener RemovalListener[K, V]

	// Clock overrides the time source; nil uses time.Now().
	Clock Clock
}

func (o *Options[K, V]) validate() {
	if o.MaximumWeight < 0 {
		panic("cache: MaximumWeight must be non-negative")
	}
	if o.ExpireAfterAccess < 0 {
		panic("cache: ExpireAfterAccess must be non-negative")
	}
	if o.ExpireAfterWrite < 0 {
		panic("cache: ExpireAfterWrite must be non-negative")
	}
	if o.Weigher == nil {
		o.Weigher = func(K, V) int64 { return 1 }
	}
	if o.RemovalListener == nil {
		o.RemovalListener = func(K, V, RemovalReason) {}
	}
}

package cache

// promise is a write-once container that eventually resolves to an
// *Entry[K, V] or to a failure. A segment installs an incomplete promise
// under a key before invoking a loader, so every other caller for that key
// can wait for the same outcome instead of invoking the loader again.
//
// The promise lives directly in the segment's own map rather than in a
// side table keyed independently: a loader for one key may call back in
// for another key that hashes to the same segment, and that only stays
// deadlock-free if awaiting a promise never requires holding the segment
// lock the loader itself needs to make progress.
type promise[K comparable, V any] struct {
	done  chan struct{}
	entry *Entry[K, V]
	err   error
}

func newPromise[K comparable, V any]() *promise[K, V] {
	return &promise[K, V]{done: make(chan struct{})}
}

// resolvedPromise builds an already-completed, successful promise.
func resolvedPromise[K comparable, V any](e *Entry[K, V]) *promise[K, V] {
	p := &promise[K, V]{done: make(chan struct{}), entry: e}
	close(p.done)
	return p
}

// complete publishes a successful outcome and wakes every waiter.
func (p *promise[K, V]) complete(e *Entry[K, V]) {
	p.entry = e
	close(p.done)
}

// fail publishes a failed outcome and wakes every waiter.
func (p *promise[K, V]) fail(err error) {
	p.err = err
	close(p.done)
}

// wait blocks until the promise resolves and returns its outcome.
func (p *promise[K, V]) wait() (*Entry[K, V], error) {
	<-p.done
	return p.entry, p.err
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) NowNanos() int64     { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t += int64(d) }

// Basic Get/Put semantics: a miss on an empty cache, a hit after Put.
func TestCache_BasicGetPut(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{})
	t.Cleanup(func() { _ = c.Close() })

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}
}

// Put on an existing key replaces the value and fires a REPLACED
// notification for the old value.
func TestCache_PutReplaces(t *testing.T) {
	t.Parallel()

	var gotReason RemovalReason
	var gotValue int
	done := make(chan struct{}, 1)

	c := New[string, int](Options[string, int]{
		RemovalListener: func(key string, value int, reason RemovalReason) {
			gotValue, gotReason = value, reason
			done <- struct{}{}
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("a", 1)
	c.Put("a", 2)

	<-done
	if gotValue != 1 || gotReason != ReasonReplaced {
		t.Fatalf("removal notification = %v, %v; want 1, ReasonReplaced", gotValue, gotReason)
	}

	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Fatalf("Get(a) = %v, %v; want 2, true", v, ok)
	}
}

// Weight-based eviction: a small MaximumWeight bounds the resident set and
// prunes least-recently-used entries first.
func TestCache_WeightEviction(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := New[string, int](Options[string, int]{
		MaximumWeight: 2,
		RemovalListener: func(key string, value int, reason RemovalReason) {
			if reason == ReasonEvicted {
				evicted = append(evicted, key)
			}
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Refresh()

	if _, ok := c.Get("a"); !ok { // promote a to MRU
		t.Fatal("expected hit for a")
	}
	c.Put("c", 3)
	c.Refresh()

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive (promoted before eviction)")
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatal("c should be present")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v; want [b]", evicted)
	}
}

// A fake clock exercises expire-after-write deterministically.
func TestCache_ExpireAfterWrite(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := New[string, string](Options[string, string]{
		ExpireAfterWrite: 100 * time.Millisecond,
		Clock:            clk,
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("x", "v")
	if _, ok := c.Get("x"); !ok {
		t.Fatal("fresh miss")
	}

	clk.add(200 * time.Millisecond)
	if _, ok := c.Get("x"); ok {
		t.Fatal("expired hit")
	}
}

// Expire-after-access resets on every Get, so an entry accessed within its
// window never expires while write-based expiry is disabled.
func TestCache_ExpireAfterAccess(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := New[string, string](Options[string, string]{
		ExpireAfterAccess: 100 * time.Millisecond,
		Clock:             clk,
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("x", "v")
	clk.add(60 * time.Millisecond)
	if _, ok := c.Get("x"); !ok {
		t.Fatal("expected hit before expiry")
	}

	clk.add(60 * time.Millisecond)
	if _, ok := c.Get("x"); !ok {
		t.Fatal("access within window should reset the expiry clock")
	}

	clk.add(200 * time.Millisecond)
	if _, ok := c.Get("x"); ok {
		t.Fatal("expected miss after the access window elapsed untouched")
	}
}

// Invalidate removes a single key and reports whether anything was removed.
func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("a", 1)
	if !c.Invalidate("a") {
		t.Fatal("Invalidate(a) should report true")
	}
	if c.Invalidate("a") {
		t.Fatal("second Invalidate(a) should report false")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Invalidate")
	}
}

// InvalidateAll clears every entry and blocks until every removal
// notification for entries live at call time has fired.
func TestCache_InvalidateAll(t *testing.T) {
	t.Parallel()

	var removed []string
	c := New[string, int](Options[string, int]{
		RemovalListener: func(key string, value int, reason RemovalReason) {
			if reason == ReasonInvalidated {
				removed = append(removed, key)
			}
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("a", 1)
	c.Put("b", 2)
	c.InvalidateAll()

	if c.Count() != 0 {
		t.Fatalf("Count() = %d; want 0", c.Count())
	}
	if len(removed) != 2 {
		t.Fatalf("removed = %v; want 2 entries", removed)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after InvalidateAll")
	}
}

// ComputeIfAbsent invokes the loader only on a miss and caches its result.
func TestCache_ComputeIfAbsent(t *testing.T) {
	t.Parallel()

	c := New[string, string](Options[string, string]{})
	t.Cleanup(func() { _ = c.Close() })

	var calls int
	loader := func(_ context.Context, key string) (string, error) {
		calls++
		return "v:" + key, nil
	}

	v, err := c.ComputeIfAbsent(context.Background(), "a", loader)
	if err != nil || v != "v:a" {
		t.Fatalf("ComputeIfAbsent = %q, %v; want v:a, nil", v, err)
	}

	v, err = c.ComputeIfAbsent(context.Background(), "a", loader)
	if err != nil || v != "v:a" {
		t.Fatalf("second ComputeIfAbsent = %q, %v; want v:a, nil", v, err)
	}
	if calls != 1 {
		t.Fatalf("loader called %d times; want 1", calls)
	}
}

// A failed load is not cached: the next ComputeIfAbsent retries the loader.
func TestCache_ComputeIfAbsent_FailureNotCached(t *testing.T) {
	t.Parallel()

	c := New[string, string](Options[string, string]{})
	t.Cleanup(func() { _ = c.Close() })

	boom := errors.New("boom")
	var calls int
	loader := func(_ context.Context, key string) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "v:" + key, nil
	}

	if _, err := c.ComputeIfAbsent(context.Background(), "a", loader); !errors.Is(err, boom) {
		t.Fatalf("first ComputeIfAbsent err = %v; want boom", err)
	}

	v, err := c.ComputeIfAbsent(context.Background(), "a", loader)
	if err != nil || v != "v:a" {
		t.Fatalf("retry ComputeIfAbsent = %q, %v; want v:a, nil", v, err)
	}
	if calls != 2 {
		t.Fatalf("loader called %d times; want 2", calls)
	}
}

// Keys/Values iterate in LRU order (most- to least-recently promoted), and
// Iterator.Remove removes the just-visited entry from the cache.
func TestCache_KeysIteratorRemove(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{})
	t.Cleanup(func() { _ = c.Close() })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Refresh()

	var order []string
	for it := c.Keys(); it.Next(); {
		order = append(order, it.Key())
		if it.Key() == "b" {
			it.Remove()
		}
	}
	if want := []string{"c", "b", "a"}; !equalStrings(order, want) {
		t.Fatalf("visited order = %v; want %v", order, want)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be absent after Iterator.Remove")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a must still be present")
	}
}

// Invalid Options panic at construction rather than surfacing at first use.
func TestCache_NewPanicsOnInvalidOptions(t *testing.T) {
	t.Parallel()

	cases := []Options[string, int]{
		{MaximumWeight: -1},
		{ExpireAfterAccess: -1},
		{ExpireAfterWrite: -1},
	}
	for _, opts := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%+v) did not panic", opts)
				}
			}()
			New[string, int](opts)
		}()
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

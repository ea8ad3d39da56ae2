package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory CounterStore with the same atomicity
// guarantees the Redis implementation relies on.
type memStore struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (s *memStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	if s.counts[key] == 1 {
		s.ttls[key] = ttl
	}
	return s.counts[key], nil
}

type failStore struct{}

func (failStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, fmt.Errorf("store down")
}

var fixedNow = time.Unix(1_700_000_000, 0) // window start 1699999980

func TestCheck_WindowKeyAlignedToMinute(t *testing.T) {
	store := newMemStore()
	l := New(store, 10)

	if _, err := l.Check(context.Background(), "user:1", fixedNow); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	wantKey := "ratelimit:user:1:1699999980"
	if store.counts[wantKey] != 1 {
		t.Fatalf("expected counter under %q, got %v", wantKey, store.counts)
	}
	if store.ttls[wantKey] != 60*time.Second {
		t.Fatalf("expected 60s ttl on first increment, got %s", store.ttls[wantKey])
	}

	// 30 seconds later: same window, same key.
	if _, err := l.Check(context.Background(), "user:1", fixedNow.Add(30*time.Second)); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if store.counts[wantKey] != 2 {
		t.Fatalf("expected same-window increment, got %v", store.counts)
	}

	// Next minute: fresh key, fresh count.
	if _, err := l.Check(context.Background(), "user:1", fixedNow.Add(60*time.Second)); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	nextKey := "ratelimit:user:1:1700000040"
	if store.counts[nextKey] != 1 {
		t.Fatalf("expected new window key %q, got %v", nextKey, store.counts)
	}
}

func TestCheck_AllowedAndRemaining(t *testing.T) {
	l := New(newMemStore(), 3)

	want := []struct {
		allowed   bool
		remaining int64
	}{
		{true, 2},
		{true, 1},
		{true, 0},
		{false, 0},
		{false, 0},
	}
	for i, w := range want {
		res, err := l.Check(context.Background(), "user:9", fixedNow)
		if err != nil {
			t.Fatalf("check %d failed: %v", i+1, err)
		}
		if res.Allowed != w.allowed || res.Remaining != w.remaining {
			t.Fatalf("request %d: got allowed=%v remaining=%d, want allowed=%v remaining=%d",
				i+1, res.Allowed, res.Remaining, w.allowed, w.remaining)
		}
		if res.Limit != 3 {
			t.Fatalf("request %d: limit = %d, want 3", i+1, res.Limit)
		}
		if res.Reset != 1699999980+60 {
			t.Fatalf("request %d: reset = %d, want %d", i+1, res.Reset, 1699999980+60)
		}
	}
}

func TestCheck_SixtyOneRequestsInOneWindow(t *testing.T) {
	l := New(newMemStore(), 60)

	for i := 1; i <= 60; i++ {
		res, err := l.Check(context.Background(), "user:42", fixedNow)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if want := int64(60 - i); res.Remaining != want {
			t.Fatalf("request %d: remaining = %d, want %d", i, res.Remaining, want)
		}
	}
	res, err := l.Check(context.Background(), "user:42", fixedNow)
	if err != nil {
		t.Fatalf("request 61 failed: %v", err)
	}
	if res.Allowed {
		t.Fatal("request 61 should be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("request 61: remaining = %d, want 0", res.Remaining)
	}
	if ra := res.RetryAfter(fixedNow); ra <= 0 || ra > 60 {
		t.Fatalf("retry-after = %d, want in (0, 60]", ra)
	}
}

func TestCheck_ConcurrentIncrementsAreCounted(t *testing.T) {
	store := newMemStore()
	l := New(store, 1000)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.Check(context.Background(), "user:7", fixedNow); err != nil {
				t.Errorf("check failed: %v", err)
			}
		}()
	}
	wg.Wait()

	key := "ratelimit:user:7:1699999980"
	if store.counts[key] != n {
		t.Fatalf("counter = %d, want %d", store.counts[key], n)
	}
}

func TestCheck_StoreErrorPropagates(t *testing.T) {
	l := New(failStore{}, 60)
	if _, err := l.Check(context.Background(), "user:1", fixedNow); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestRetryAfter_FlooredAtZero(t *testing.T) {
	res := Result{Reset: fixedNow.Unix() - 5}
	if got := res.RetryAfter(fixedNow); got != 0 {
		t.Fatalf("retry-after = %d, want 0", got)
	}
}
